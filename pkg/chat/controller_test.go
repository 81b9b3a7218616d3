package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptedStream serves chunks pushed by the test, then EOF or finalErr.
// Read honors cancellation the way a real response body does.
type scriptedStream struct {
	ctx      context.Context
	chunks   chan []byte
	finalErr error
}

func (s *scriptedStream) Read(p []byte) (int, error) {
	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			if s.finalErr != nil {
				return 0, s.finalErr
			}
			return 0, io.EOF
		}
		return copy(p, chunk), nil
	case <-s.ctx.Done():
		return 0, s.ctx.Err()
	}
}

func (s *scriptedStream) Close() error { return nil }

type fakeRelay struct {
	openErr  error
	chunks   chan []byte
	finalErr error
}

func (r *fakeRelay) Open(ctx context.Context, docContext, message string) (io.ReadCloser, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	return &scriptedStream{ctx: ctx, chunks: r.chunks, finalErr: r.finalErr}, nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func lastTurn(c *Controller) Turn {
	turns := c.Transcript().Snapshot()
	return turns[len(turns)-1]
}

func TestControllerHelloWorld(t *testing.T) {
	relay := &fakeRelay{chunks: make(chan []byte, 3)}
	relay.chunks <- []byte(`{"response":"Hel"}` + "\n")
	relay.chunks <- []byte(`{"response":"lo"}` + "\n")
	relay.chunks <- []byte(`{"response":" world"}` + "\n")
	close(relay.chunks)

	c := NewController(relay)
	if err := c.Send(context.Background(), "doc body", "question"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	c.Wait()

	if got := c.State(); got != StateCompleted {
		t.Fatalf("state = %v, want completed", got)
	}
	turns := c.Transcript().Snapshot()
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Text != "question" {
		t.Fatalf("turns[0] = %+v", turns[0])
	}
	if turns[1].Role != RoleAssistant || turns[1].Text != "Hello world" {
		t.Fatalf("turns[1] = %+v", turns[1])
	}
}

func TestControllerPreStreamErrorReplacesBlankTurn(t *testing.T) {
	relay := &fakeRelay{openErr: &APIError{Status: 502, Message: "upstream rejected request: status 500"}}

	c := NewController(relay)
	if err := c.Send(context.Background(), "", "q"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	c.Wait()

	if got := c.State(); got != StateErrored {
		t.Fatalf("state = %v, want errored", got)
	}
	last := lastTurn(c)
	if last.Role != RoleAssistant || last.Text == "" {
		t.Fatalf("assistant turn left blank: %+v", last)
	}
	if !strings.Contains(last.Text, "upstream rejected") {
		t.Fatalf("turn text = %q, want rendered error", last.Text)
	}

	// The controller is back to accepting prompts.
	relay.openErr = nil
	relay.chunks = make(chan []byte, 1)
	relay.chunks <- []byte(`{"response":"ok"}` + "\n")
	close(relay.chunks)
	if err := c.Send(context.Background(), "", "again"); err != nil {
		t.Fatalf("Send after error: %v", err)
	}
	c.Wait()
	if got := lastTurn(c).Text; got != "ok" {
		t.Fatalf("retry text = %q", got)
	}
}

func TestControllerSessionBusy(t *testing.T) {
	relay := &fakeRelay{chunks: make(chan []byte)} // nothing arrives yet

	c := NewController(relay)
	if err := c.Send(context.Background(), "", "first"); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if err := c.Send(context.Background(), "", "second"); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("second Send = %v, want ErrSessionBusy", err)
	}
	// No second growing turn was created.
	if got := c.Transcript().Len(); got != 2 {
		t.Fatalf("len(turns) = %d, want 2", got)
	}

	c.Cancel()
	c.Wait()
}

func TestControllerCancelMidStream(t *testing.T) {
	relay := &fakeRelay{chunks: make(chan []byte, 3)}
	relay.chunks <- []byte(`{"response":"Hel"}` + "\n")
	relay.chunks <- []byte(`{"response":"lo"}` + "\n")

	c := NewController(relay)
	if err := c.Send(context.Background(), "", "q"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	waitFor(t, "two fragments", func() bool { return lastTurn(c).Text == "Hello" })

	c.Cancel()
	c.Wait()

	// A record already in flight must not be applied after cancel.
	select {
	case relay.chunks <- []byte(`{"response":" world"}` + "\n"):
	default:
	}

	if got := c.State(); got != StateCancelled {
		t.Fatalf("state = %v, want cancelled", got)
	}
	if got := lastTurn(c).Text; got != "Hello" {
		t.Fatalf("text = %q, want exactly the applied fragments", got)
	}
}

// stubbornStream delivers chunks but never notices cancellation, like a
// response body whose data was already buffered before the teardown.
type stubbornStream struct {
	chunks chan []byte
}

func (s *stubbornStream) Read(p []byte) (int, error) {
	chunk, ok := <-s.chunks
	if !ok {
		return 0, io.EOF
	}
	return copy(p, chunk), nil
}

func (s *stubbornStream) Close() error { return nil }

// sequenceRelay hands out one prepared stream per Open call.
type sequenceRelay struct {
	mu      sync.Mutex
	streams []*stubbornStream
	opened  int
}

func (r *sequenceRelay) Open(ctx context.Context, docContext, message string) (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.streams[r.opened]
	r.opened++
	return s, nil
}

func TestControllerResendAfterCancelIgnoresStaleStream(t *testing.T) {
	first := &stubbornStream{chunks: make(chan []byte, 2)}
	second := &stubbornStream{chunks: make(chan []byte, 2)}
	relay := &sequenceRelay{streams: []*stubbornStream{first, second}}

	c := NewController(relay)
	if err := c.Send(context.Background(), "", "one"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	first.chunks <- []byte(`{"response":"Hel"}` + "\n")
	waitFor(t, "first fragment", func() bool { return lastTurn(c).Text == "Hel" })

	c.Cancel()

	if err := c.Send(context.Background(), "", "two"); err != nil {
		t.Fatalf("Send after cancel: %v", err)
	}

	// A record that was already in flight on the cancelled stream is
	// delivered now, while the new session waits for its first byte.
	first.chunks <- []byte(`{"response":"STALE"}` + "\n")
	close(first.chunks)
	time.Sleep(20 * time.Millisecond)

	if got := c.State(); got != StateSending {
		t.Fatalf("state = %v, want sending untouched by the old stream", got)
	}
	if got := lastTurn(c).Text; got != "" {
		t.Fatalf("new turn text = %q, want empty before its own first byte", got)
	}

	second.chunks <- []byte(`{"response":"fresh"}` + "\n")
	close(second.chunks)
	c.Wait()

	if got := c.State(); got != StateCompleted {
		t.Fatalf("state = %v, want completed", got)
	}
	turns := c.Transcript().Snapshot()
	if len(turns) != 4 {
		t.Fatalf("len(turns) = %d, want 4", len(turns))
	}
	if turns[1].Text != "Hel" {
		t.Fatalf("cancelled turn = %q, want exactly the applied fragments", turns[1].Text)
	}
	if turns[3].Text != "fresh" {
		t.Fatalf("new turn = %q, want only its own fragments", turns[3].Text)
	}
}

func TestControllerStreamInterrupted(t *testing.T) {
	relay := &fakeRelay{
		chunks:   make(chan []byte, 1),
		finalErr: errors.New("connection reset"),
	}
	relay.chunks <- []byte(`{"response":"partial "}` + "\n")
	close(relay.chunks)

	c := NewController(relay)
	if err := c.Send(context.Background(), "", "q"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	c.Wait()

	if got := c.State(); got != StateErrored {
		t.Fatalf("state = %v, want errored", got)
	}
	text := lastTurn(c).Text
	if !strings.HasPrefix(text, "partial ") {
		t.Fatalf("partial output discarded: %q", text)
	}
	if !strings.Contains(text, "connection reset") {
		t.Fatalf("missing error annotation: %q", text)
	}
}

func TestControllerTruncatedStream(t *testing.T) {
	relay := &fakeRelay{chunks: make(chan []byte, 2)}
	relay.chunks <- []byte(`{"response":"kept"}` + "\n")
	relay.chunks <- []byte(`{"response":"dang`) // closes mid-record
	close(relay.chunks)

	c := NewController(relay)
	if err := c.Send(context.Background(), "", "q"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	c.Wait()

	if got := c.State(); got != StateErrored {
		t.Fatalf("state = %v, want errored", got)
	}
	text := lastTurn(c).Text
	if !strings.HasPrefix(text, "kept") {
		t.Fatalf("applied fragments not retained: %q", text)
	}
	if !strings.Contains(text, "stream truncated") {
		t.Fatalf("missing truncation annotation: %q", text)
	}
}
