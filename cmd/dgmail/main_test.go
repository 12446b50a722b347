package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daisuke6106/dgmail/internal/address"
	"github.com/daisuke6106/dgmail/internal/checkpoint"
	"github.com/daisuke6106/dgmail/internal/message"
)

func TestCapCheckpointHoldsBackUnprintedMail(t *testing.T) {
	// status read saw UID 12 arrive after the search that returned 7 and 9
	next := &checkpoint.Checkpoint{Mailbox: "INBOX", UIDValidity: 1, LastUID: 12}
	msgs := []*message.Message{{UID: 7}, {UID: 9}}
	got := capCheckpoint(next, msgs)
	assert.Equal(t, uint32(9), got.LastUID)
}

func TestCapCheckpointKeepsPositionWhenNothingFetched(t *testing.T) {
	next := &checkpoint.Checkpoint{Mailbox: "INBOX", UIDValidity: 1, LastUID: 12}
	got := capCheckpoint(next, nil)
	assert.Equal(t, uint32(12), got.LastUID)
}

func TestSummarize(t *testing.T) {
	m := &message.Message{
		From:    []address.Address{{Raw: "dai@example.org", Name: "Dai"}},
		To:      []address.Address{{Raw: "a@example.org"}, {Raw: "b@example.org"}},
		Subject: "hello",
		Body:    "short body",
	}
	got := summarize(m)
	assert.Contains(t, got, "From: Dai <dai@example.org>")
	assert.Contains(t, got, "To: a@example.org, b@example.org")
	assert.Contains(t, got, "Subject: hello")
	assert.Contains(t, got, "Body:\nshort body")
}

func TestSummarizeTruncatesLongBody(t *testing.T) {
	m := &message.Message{Body: strings.Repeat("あ", 150)}
	got := summarize(m)
	assert.Contains(t, got, strings.Repeat("あ", 100)+"...")
	assert.NotContains(t, got, strings.Repeat("あ", 101))
}

func TestSummarizeEmpty(t *testing.T) {
	got := summarize(&message.Message{})
	assert.Contains(t, got, "From: (none)")
	assert.Contains(t, got, "(no text body)")
}
