package upstream

import (
	"errors"
	"fmt"
)

// ErrUnreachable indicates the generative-text service could not be
// reached before any bytes were returned (connection refused or the
// connect-and-first-byte timeout elapsed).
var ErrUnreachable = errors.New("upstream unreachable")

// RejectedError indicates the service answered with a non-success status
// before streaming started.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("upstream rejected request: status %d", e.Status)
}

// StreamInterruptedError indicates the byte stream failed after it had
// been handed to the caller. Bytes already delivered remain valid.
type StreamInterruptedError struct {
	Err error
}

func (e *StreamInterruptedError) Error() string {
	return fmt.Sprintf("upstream stream interrupted: %v", e.Err)
}

func (e *StreamInterruptedError) Unwrap() error {
	return e.Err
}
