package imap

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrConnect = errors.New("imap: server unreachable or TLS failure")
	ErrAuth    = errors.New("imap: authentication rejected")
	ErrMailbox = errors.New("imap: mailbox selection failed")
	ErrSearch  = errors.New("imap: mailbox search failed")
	ErrFetch   = errors.New("imap: message fetch failed")
	ErrParse   = errors.New("imap: malformed message")
)

// SessionError is a rich error type that wraps the sentinel errors with
// context about the failed operation.
type SessionError struct {
	Sentinel  error
	Operation string
	Detail    string
	Err       error // Nested lower-level error (e.g. net.Error)
}

func (e *SessionError) Error() string {
	msg := fmt.Sprintf("imap: %s: %v", e.Operation, e.Sentinel)
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SessionError) Unwrap() error {
	return e.Sentinel
}

func wrapError(operation string, sentinel error, detail string, err error) error {
	return &SessionError{
		Sentinel:  sentinel,
		Operation: operation,
		Detail:    detail,
		Err:       err,
	}
}
