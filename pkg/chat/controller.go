package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// State is the relay session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateCompleted
	StateErrored
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// terminal reports whether a new prompt may be submitted from s.
func (s State) terminal() bool {
	return s == StateIdle || s == StateCompleted || s == StateErrored || s == StateCancelled
}

// Relay opens one byte stream answering a prompt about a document
// snapshot. *Client implements it against the draftpad server; tests
// implement it in memory.
type Relay interface {
	Open(ctx context.Context, docContext, message string) (io.ReadCloser, error)
}

// controllerBufSize is the client-side read size; each read is handled
// as one discrete unit of work.
const controllerBufSize = 4096

// Controller coordinates one outstanding relay session at a time: it
// owns the transcript, drives the decoder over the response stream, and
// enforces that at most one session is non-terminal. All transcript
// mutation happens on the session's consuming goroutine, in arrival
// order.
type Controller struct {
	relay      Relay
	transcript *Transcript

	// OnUpdate, if set, is invoked after every state change and applied
	// fragment. It runs on the consuming goroutine and must not block.
	OnUpdate func(s State)

	mu    sync.Mutex
	state State

	// gen identifies the live session. The consuming goroutine captures
	// its own generation and compares it under the mutex before every
	// state or transcript mutation, so a goroutine still draining a
	// cancelled stream can never touch a later session's growing turn.
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a controller over an empty transcript.
func NewController(relay Relay) *Controller {
	return &Controller{
		relay:      relay,
		transcript: NewTranscript(),
		state:      StateIdle,
	}
}

// Transcript returns the controller's transcript for rendering.
func (c *Controller) Transcript() *Transcript {
	return c.transcript
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send submits a prompt. It appends the user turn and an empty growing
// assistant turn, then consumes the relay stream on its own goroutine;
// the caller is never blocked on network reads. Submitting while a
// session is still in flight returns ErrSessionBusy and leaves the
// transcript untouched.
func (c *Controller) Send(ctx context.Context, docContext, message string) error {
	c.mu.Lock()
	if !c.state.terminal() {
		c.mu.Unlock()
		return ErrSessionBusy
	}

	c.transcript.AppendUser(message)
	if err := c.transcript.BeginAssistant(); err != nil {
		c.mu.Unlock()
		return err
	}

	sctx, cancel := context.WithCancel(ctx)
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateSending
	done := c.done
	c.mu.Unlock()

	c.notify(StateSending)

	go func() {
		defer close(done)
		defer cancel()
		c.run(sctx, gen, docContext, message)
	}()

	return nil
}

// Cancel aborts the in-flight session, if any. Consumption stops, the
// stream is torn down, and the transcript is left exactly as it was: no
// completion marker, no error annotation.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state != StateSending && c.state != StateStreaming {
		c.mu.Unlock()
		return
	}
	c.state = StateCancelled
	cancel := c.cancel
	c.transcript.Seal()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.notify(StateCancelled)
}

// Wait blocks until the current session reaches a terminal state.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Controller) run(ctx context.Context, gen uint64, docContext, message string) {
	body, err := c.relay.Open(ctx, docContext, message)
	if err != nil {
		c.finishError(gen, fmt.Sprintf("Error: %v", err), true)
		return
	}
	defer body.Close()

	var dec Decoder
	buf := make([]byte, controllerBufSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if !c.markStreaming(gen) {
				return // session cancelled or superseded; bytes are dropped
			}
			for _, ev := range dec.Feed(buf[:n]) {
				if !c.applyFragment(gen, ev.Text) {
					return
				}
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				c.finishEOF(gen, dec.Finish())
			} else {
				c.finishError(gen, fmt.Sprintf("\n\n[Error: %v]", rerr), false)
			}
			return
		}
	}
}

// sessionAlive reports whether gen is still the live, uncancelled
// session. Must be called with the mutex held.
func (c *Controller) sessionAlive(gen uint64) bool {
	return c.gen == gen && c.state != StateCancelled
}

// markStreaming moves Sending to Streaming on the session's first chunk.
// Returns false if the session is no longer live.
func (c *Controller) markStreaming(gen uint64) bool {
	c.mu.Lock()
	if !c.sessionAlive(gen) {
		c.mu.Unlock()
		return false
	}
	changed := c.state == StateSending
	if changed {
		c.state = StateStreaming
	}
	c.mu.Unlock()

	if changed {
		c.notify(StateStreaming)
	}
	return true
}

// applyFragment appends one fragment to the growing turn. The liveness
// check and the append happen under one lock hold, so a fragment from a
// dead session can never land in a later session's turn.
func (c *Controller) applyFragment(gen uint64, text string) bool {
	c.mu.Lock()
	if !c.sessionAlive(gen) {
		c.mu.Unlock()
		return false
	}
	if text == "" {
		c.mu.Unlock()
		return true
	}
	if err := c.transcript.AppendFragment(text); err != nil {
		c.mu.Unlock()
		return false
	}
	state := c.state
	c.mu.Unlock()

	c.notify(state)
	return true
}

// finishEOF seals the session after a clean or truncated stream end.
func (c *Controller) finishEOF(gen uint64, err error) {
	if err != nil {
		c.finishError(gen, "\n\n[Error: stream truncated]", false)
		return
	}

	c.mu.Lock()
	if !c.sessionAlive(gen) {
		c.mu.Unlock()
		return
	}
	c.state = StateCompleted
	c.transcript.Seal()
	c.mu.Unlock()

	c.notify(StateCompleted)
}

// finishError ends the session in StateErrored. For pre-stream failures
// the placeholder assistant turn is replaced by the rendered message so
// it is never left blank; for mid-stream failures the annotation is
// appended after whatever partial text already arrived.
func (c *Controller) finishError(gen uint64, message string, replace bool) {
	c.mu.Lock()
	if !c.sessionAlive(gen) {
		c.mu.Unlock()
		return
	}
	c.state = StateErrored
	if replace {
		c.transcript.SetGrowingText(message)
	} else {
		c.transcript.AppendFragment(message)
	}
	c.transcript.Seal()
	c.mu.Unlock()

	c.notify(StateErrored)
}

func (c *Controller) notify(s State) {
	if c.OnUpdate != nil {
		c.OnUpdate(s)
	}
}
