package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidChoice is returned when an answer does not match any option
	// of the current node, or when no guided session is active.
	ErrInvalidChoice = errors.New("invalid choice")

	// ErrNoActiveSession is returned by answer when the walker has been reset.
	// It matches ErrInvalidChoice with errors.Is.
	ErrNoActiveSession = fmt.Errorf("%w: no active session", ErrInvalidChoice)

	// ErrUnknownTransitionTarget is returned when a Next transition names a
	// node that does not exist in the tree.
	ErrUnknownTransitionTarget = errors.New("unknown transition target")

	// ErrNodeNotFound is returned when a node ID cannot be resolved by a loader.
	ErrNodeNotFound = errors.New("node not found")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSpecialization is returned when a specialization tag is not recognized.
	ErrInvalidSpecialization = errors.New("invalid specialization")
)

// InvalidChoiceError carries the context of a rejected answer.
type InvalidChoiceError struct {
	NodeID  string
	Choice  string
	Allowed []string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid choice %q at node %q (allowed: %s)",
		e.Choice, e.NodeID, strings.Join(e.Allowed, ", "))
}

// Is makes errors.Is(err, ErrInvalidChoice) succeed.
func (e *InvalidChoiceError) Is(target error) bool {
	return target == ErrInvalidChoice
}

// UnknownTransitionTargetError reports a dangling Next transition.
type UnknownTransitionTargetError struct {
	NodeID string
	Choice string
	Target string
}

func (e *UnknownTransitionTargetError) Error() string {
	return fmt.Sprintf("node %q choice %q points to unknown node %q", e.NodeID, e.Choice, e.Target)
}

func (e *UnknownTransitionTargetError) Is(target error) bool {
	return target == ErrUnknownTransitionTarget
}
