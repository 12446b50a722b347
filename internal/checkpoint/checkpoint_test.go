package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.json")
	store := NewStore(path)

	want := &Checkpoint{
		Mailbox:     "INBOX",
		UIDValidity: 7,
		LastUID:     120,
		UpdatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o600))
	_, err := NewStore(path).Load()
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	cp := &Checkpoint{Mailbox: "INBOX", UIDValidity: 3}
	assert.True(t, cp.Matches("INBOX", 3))
	assert.False(t, cp.Matches("INBOX", 4))
	assert.False(t, cp.Matches("Archive", 3))
	var nilCP *Checkpoint
	assert.False(t, nilCP.Matches("INBOX", 3))
}
