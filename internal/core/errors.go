package core

import (
	"errors"
	"fmt"
)

var (
	ErrPollerRunning = errors.New("poller already running")
	ErrNoResponder   = errors.New("poller requires a responder")
)

// ResponderError wraps a failure raised by a Responder, including a
// recovered panic.
type ResponderError struct {
	Err error
}

func (e *ResponderError) Error() string {
	return fmt.Sprintf("responder: %v", e.Err)
}

func (e *ResponderError) Unwrap() error {
	return e.Err
}
