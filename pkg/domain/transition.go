package domain

import (
	"encoding/json"
	"fmt"
)

// TransitionKind tags the variant held by a Transition.
type TransitionKind string

const (
	// TransitionNext moves the session to another node.
	TransitionNext TransitionKind = "next"
	// TransitionTerminal ends the session with a Recommendation.
	TransitionTerminal TransitionKind = "terminal"
	// TransitionClose ends the session with a neutral message and no specialization.
	TransitionClose TransitionKind = "close"
)

// Transition is the result of picking a Choice. It holds exactly one of
// a next node id, a recommendation or a closing message. The zero value is
// not a valid transition; use Next, Terminal or Close.
type Transition struct {
	kind TransitionKind
	to   string
	rec  Recommendation
}

// Next returns a transition to the node with the given id.
func Next(nodeID string) Transition {
	return Transition{kind: TransitionNext, to: nodeID}
}

// Terminal returns a transition that ends the session with rec.
func Terminal(rec Recommendation) Transition {
	return Transition{kind: TransitionTerminal, rec: rec}
}

// Close returns a transition that ends the session with a neutral message.
func Close(message string) Transition {
	return Transition{kind: TransitionClose, rec: NoRecommendation(message)}
}

// Kind returns the variant tag. The zero Transition reports "".
func (t Transition) Kind() TransitionKind { return t.kind }

// Target returns the next node id. Only meaningful for TransitionNext.
func (t Transition) Target() string { return t.to }

// Recommendation returns the outcome of a Terminal or Close transition.
func (t Transition) Recommendation() Recommendation { return t.rec }

// IsZero reports whether the transition was never initialized.
func (t Transition) IsZero() bool { return t.kind == "" }

func (t Transition) String() string {
	switch t.kind {
	case TransitionNext:
		return "next(" + t.to + ")"
	case TransitionTerminal:
		return "terminal(" + string(t.rec.Specialization) + ")"
	case TransitionClose:
		return "close"
	default:
		return "invalid"
	}
}

type transitionJSON struct {
	Kind           TransitionKind `json:"kind"`
	To             string         `json:"to,omitempty"`
	Specialization Specialization `json:"specialization,omitempty"`
	Message        string         `json:"message,omitempty"`
}

func (t Transition) MarshalJSON() ([]byte, error) {
	return json.Marshal(transitionJSON{
		Kind:           t.kind,
		To:             t.to,
		Specialization: t.rec.Specialization,
		Message:        t.rec.Message,
	})
}

func (t *Transition) UnmarshalJSON(data []byte) error {
	var raw transitionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case TransitionNext:
		*t = Next(raw.To)
	case TransitionTerminal:
		*t = Terminal(Recommend(raw.Specialization, raw.Message))
	case TransitionClose:
		*t = Close(raw.Message)
	default:
		return fmt.Errorf("unknown transition kind %q", raw.Kind)
	}
	return nil
}
