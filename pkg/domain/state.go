package domain

import "time"

// ExecutionStatus defines where a session is in its guided flow.
type ExecutionStatus string

const (
	StatusIdle       ExecutionStatus = "idle"       // No guided session (never started or cancelled)
	StatusActive     ExecutionStatus = "active"     // Waiting for an answer at CurrentNodeID
	StatusTerminated ExecutionStatus = "terminated" // Ended with a recommendation or close
)

// State is the snapshot of one conversation's walker.
// An empty CurrentNodeID means no guided session is running.
type State struct {
	SessionID     string          `json:"session_id"`
	CurrentNodeID string          `json:"current_node_id,omitempty"`
	Status        ExecutionStatus `json:"status"`

	// History is the path of node ids visited in the current run.
	History []string `json:"history,omitempty"`

	// Outcome holds the result of the last finished run.
	Outcome *Recommendation `json:"outcome,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries an encrypted snapshot when the store encrypts at rest
	// (see pkg/persistence/middleware). Walkers never read it.
	Sealed string `json:"sealed,omitempty"`
}

// NewState creates an idle state for a session.
func NewState(sessionID string) *State {
	return &State{SessionID: sessionID, Status: StatusIdle}
}

// Active reports whether an answer is expected.
func (s *State) Active() bool {
	return s != nil && s.Status == StatusActive && s.CurrentNodeID != ""
}

// Clone returns a deep copy safe for mutation.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	if s.History != nil {
		c.History = append([]string(nil), s.History...)
	}
	if s.Outcome != nil {
		o := *s.Outcome
		c.Outcome = &o
	}
	return &c
}
