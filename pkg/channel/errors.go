package channel

import (
	"errors"
	"fmt"
)

var (
	ErrSendClosed      = errors.New("channel: send after end of requests")
	ErrStreamViolation = errors.New("channel: stream lifecycle violation")
)

// ViolationError describes a reply stream that ended while requests were
// still unanswered or before the caller finished sending.
type ViolationError struct {
	State   State
	Pending int
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%v: replies ended in state %s with %d unanswered requests", ErrStreamViolation, e.State, e.Pending)
}

func (e *ViolationError) Unwrap() error {
	return ErrStreamViolation
}

// TransportError wraps an abrupt stream termination.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("channel: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
