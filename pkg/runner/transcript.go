package runner

import (
	"sync"
	"time"

	"github.com/aretw0/triage/pkg/domain"
)

// Transcript records the turns of the current conversation in memory.
// It is discarded with the runner.
type Transcript struct {
	mu    sync.Mutex
	turns []domain.ConversationTurn
	now   func() time.Time
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// Append stamps and stores a turn, returning the stored copy.
func (t *Transcript) Append(turn domain.ConversationTurn) domain.ConversationTurn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if turn.At.IsZero() {
		turn.At = t.now()
	}
	t.turns = append(t.turns, turn)
	return turn
}

// Turns returns a copy of the recorded turns in order.
func (t *Transcript) Turns() []domain.ConversationTurn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.ConversationTurn(nil), t.turns...)
}

// Len returns the number of recorded turns.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}
