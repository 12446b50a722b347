package mimeutil

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharsetReaderTranscodes(t *testing.T) {
	r, err := CharsetReader("iso-8859-1", strings.NewReader("caf\xe9"))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "café", string(got))
}

func TestCharsetReaderPassthrough(t *testing.T) {
	for _, cs := range []string{"", "utf-8", "UTF-8", "us-ascii"} {
		r, err := CharsetReader(cs, strings.NewReader("plain"))
		require.NoError(t, err)
		got, _ := io.ReadAll(r)
		assert.Equal(t, "plain", string(got))
	}
}

func TestCharsetReaderUnknown(t *testing.T) {
	_, err := CharsetReader("x-no-such-charset", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestDecodeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain subject", "plain subject"},
		{"=?UTF-8?B?44GT44KT44Gr44Gh44Gv?=", "こんにちは"},
		{"=?iso-8859-1?q?Andr=E9?=", "André"},
		// malformed encoded word stays as-is
		{"=?bogus-charset?q?x?=", "=?bogus-charset?q?x?="},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DecodeHeader(tc.in), "input %q", tc.in)
	}
}
