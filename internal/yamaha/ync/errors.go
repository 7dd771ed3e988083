package ync

import "fmt"

// RejectedError represents a non-zero RC result code from the receiver.
// The raw response payload is kept for diagnostics.
type RejectedError struct {
	Op      string
	RC      string
	Payload []byte
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("receiver rejected %s: RC %s", e.Op, e.RC)
}

// TimeoutError indicates a request timed out.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("receiver request %s timed out", e.Op)
}

// UnreachableError indicates the receiver could not be reached.
type UnreachableError struct {
	Op  string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("receiver request %s unreachable: %v", e.Op, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// ParseError indicates the receiver returned malformed XML. Unlike a
// transport failure it is not retryable.
type ParseError struct {
	Op      string
	Err     error
	Payload []byte
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("receiver response to %s unparseable: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
