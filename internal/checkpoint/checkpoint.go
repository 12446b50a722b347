// Package checkpoint persists a mailbox read position so later runs can
// fetch only messages that arrived since.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/renameio/v2"
)

// Checkpoint records how far a mailbox has been read. A checkpoint is only
// valid for the UIDVALIDITY it was taken under; a changed UIDVALIDITY means
// the server reassigned UIDs and LastUID no longer identifies a message.
type Checkpoint struct {
	Mailbox     string    `json:"mailbox"`
	UIDValidity uint32    `json:"uid_validity"`
	LastUID     uint32    `json:"last_uid"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Matches reports whether the checkpoint was taken against the given
// mailbox generation.
func (c *Checkpoint) Matches(mailbox string, uidValidity uint32) bool {
	return c != nil && c.Mailbox == mailbox && c.UIDValidity == uidValidity
}

// Store persists a single checkpoint as JSON at a fixed path.
type Store struct {
	path string
}

// NewStore returns a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the stored checkpoint. A missing file is not an error and
// yields (nil, nil).
func (s *Store) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read %s: %w", s.path, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("checkpoint: decode %s: %w", s.path, err)
	}
	return &cp, nil
}

// Save writes the checkpoint atomically so a crash cannot leave a torn
// file behind.
func (s *Store) Save(cp *Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: encode: %w", err)
	}
	if err := renameio.WriteFile(s.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("checkpoint: write %s: %w", s.path, err)
	}
	return nil
}
