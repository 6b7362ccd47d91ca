package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventOutcome   EventType = "outcome"
	EventClassify  EventType = "classify"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Choice string `json:"choice,omitempty"`
}

// OutcomeEvent is emitted when a guided session ends.
type OutcomeEvent struct {
	EventBase
	NodeID         string         `json:"node_id"`
	Kind           TransitionKind `json:"kind"`
	Recommendation Recommendation `json:"recommendation"`
	Depth          int            `json:"depth"`
}

// ClassifyEvent is emitted for every classifier call.
type ClassifyEvent struct {
	EventBase
	RuleID         string         `json:"rule_id,omitempty"`
	Keyword        string         `json:"keyword,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnOutcome   func(context.Context, *OutcomeEvent)
	OnClassify  func(context.Context, *ClassifyEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter: chain(h.OnNodeEnter, other.OnNodeEnter),
		OnNodeLeave: chain(h.OnNodeLeave, other.OnNodeLeave),
		OnOutcome:   chain(h.OnOutcome, other.OnOutcome),
		OnClassify:  chain(h.OnClassify, other.OnClassify),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
