package store

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSender = errors.New("invalid sender")
	ErrClosed        = errors.New("mailbox closed")
)

// ReadError reports mailbox data that could not be read or decoded.
// Callers treat the mailbox as empty and carry on.
type ReadError struct {
	Mailbox string
	Err     error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read mailbox %s: %v", e.Mailbox, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError reports a failed save.
type WriteError struct {
	Mailbox string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write mailbox %s: %v", e.Mailbox, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsReadError reports whether err carries a *ReadError.
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}

// IsWriteError reports whether err carries a *WriteError.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
