package chat

import (
	"errors"
	"sync"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a chat transcript.
type Turn struct {
	Role Role
	Text string
}

// Transcript is the ordered in-memory record of one chat session's
// turns. At most one turn is growing (receiving appended fragments) at
// any time, and it is always the last element. Reads take a snapshot,
// so a rendering layer may read concurrently with the in-progress
// append.
type Transcript struct {
	mu      sync.RWMutex
	turns   []Turn
	growing bool
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// AppendUser appends a completed user turn.
func (t *Transcript) AppendUser(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, Turn{Role: RoleUser, Text: text})
}

// BeginAssistant appends an empty assistant turn and marks it growing.
// It fails if another turn is still growing.
func (t *Transcript) BeginAssistant() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.growing {
		return errors.New("transcript already has a growing turn")
	}
	t.turns = append(t.turns, Turn{Role: RoleAssistant})
	t.growing = true
	return nil
}

// AppendFragment appends text to the growing turn.
func (t *Transcript) AppendFragment(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.growing {
		return errors.New("transcript has no growing turn")
	}
	t.turns[len(t.turns)-1].Text += text
	return nil
}

// SetGrowingText replaces the growing turn's text. Used to turn the
// placeholder assistant turn into a rendered error message.
func (t *Transcript) SetGrowingText(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.growing {
		return errors.New("transcript has no growing turn")
	}
	t.turns[len(t.turns)-1].Text = text
	return nil
}

// Seal marks the growing turn complete; no further mutation is allowed.
// Sealing an already-sealed transcript is a no-op.
func (t *Transcript) Seal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.growing = false
}

// Snapshot returns a copy of the turns, consistent at one instant.
func (t *Transcript) Snapshot() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}
