package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionBusy indicates a prompt was submitted while another relay
	// session was still in flight. Prompts are not queued; the caller may
	// retry once the session reaches a terminal state.
	ErrSessionBusy = errors.New("chat session busy")

	// ErrTruncatedStream indicates the stream closed with a dangling
	// partial record. Fragments already applied remain valid.
	ErrTruncatedStream = errors.New("stream truncated mid-record")
)

// APIError is a non-success response from the relay server, received
// before any stream bytes.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}
