package runtime

import (
	"context"

	"github.com/aretw0/triage/pkg/domain"
)

func (e *Engine) base(t domain.EventType, state *domain.State) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, SessionID: state.SessionID}
}

func (e *Engine) emitNodeEnter(ctx context.Context, state *domain.State, nodeID string) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: e.base(domain.EventNodeEnter, state),
		NodeID:    nodeID,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, state *domain.State, nodeID, choice string) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: e.base(domain.EventNodeLeave, state),
		NodeID:    nodeID,
		Choice:    choice,
	})
}

func (e *Engine) emitOutcome(ctx context.Context, state *domain.State, nodeID string, kind domain.TransitionKind, rec domain.Recommendation, depth int) {
	if e.hooks.OnOutcome == nil {
		return
	}
	e.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
		EventBase:      e.base(domain.EventOutcome, state),
		NodeID:         nodeID,
		Kind:           kind,
		Recommendation: rec,
		Depth:          depth,
	})
}
