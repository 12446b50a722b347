package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// Configure is once-only per process, so all assertions against the global
// logger share a single buffer configured here.
var buf bytes.Buffer

func TestMain(m *testing.M) {
	Configure(Config{Level: "debug", Output: &buf, Service: "dgmail-test"})
	m.Run()
}

func lastLine(t *testing.T) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	return entry
}

func TestWithComponentAnnotatesEntries(t *testing.T) {
	l := WithComponent("imap")
	l.Info().Msg("connected")
	entry := lastLine(t)
	if entry[FieldComponent] != "imap" {
		t.Errorf("expected component imap, got %v", entry[FieldComponent])
	}
	if entry["service"] != "dgmail-test" {
		t.Errorf("expected service dgmail-test, got %v", entry["service"])
	}
}

func TestDeriveAttachesFields(t *testing.T) {
	l := Derive(func(ctx *zerolog.Context) {
		*ctx = ctx.Str(FieldMailbox, "INBOX")
	})
	l.Debug().Msg("selected")
	entry := lastLine(t)
	if entry[FieldMailbox] != "INBOX" {
		t.Errorf("expected mailbox INBOX, got %v", entry[FieldMailbox])
	}
}

func TestSetLevel(t *testing.T) {
	SetLevel("error")
	before := buf.Len()
	l := Base()
	l.Debug().Msg("suppressed")
	if buf.Len() != before {
		t.Error("debug entry must be suppressed at error level")
	}
	SetLevel("debug")
	l.Debug().Msg("visible again")
	if buf.Len() == before {
		t.Error("debug entry must appear after restoring the level")
	}
}

func TestConfigureIsIdempotent(t *testing.T) {
	var other bytes.Buffer
	Configure(Config{Output: &other, Service: "ignored"})
	l := Base()
	l.Info().Msg("still routed to first writer")
	if other.Len() != 0 {
		t.Error("second Configure call must not rebind the writer")
	}
}
