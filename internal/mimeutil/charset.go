// Package mimeutil provides MIME header and charset decoding shared by the
// address and message parsers.
package mimeutil

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// CharsetReader wraps r so that its content is transcoded from the named
// charset to UTF-8. UTF-8 and US-ASCII pass through unchanged. Unknown
// charsets return an error so callers can decide whether to fall back to
// the raw bytes.
func CharsetReader(charset string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "us-ascii", "ascii":
		return r, nil
	}
	enc, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("mimeutil: lookup charset %q: %w", charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("mimeutil: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(r), nil
}

// NewWordDecoder returns a RFC 2047 word decoder backed by CharsetReader.
func NewWordDecoder() *mime.WordDecoder {
	return &mime.WordDecoder{CharsetReader: CharsetReader}
}

// DecodeHeader decodes all encoded words in a header value. Decoding is
// best effort: a header with an unknown charset or malformed encoding is
// returned as-is rather than dropped.
func DecodeHeader(value string) string {
	if value == "" {
		return ""
	}
	decoded, err := NewWordDecoder().DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
