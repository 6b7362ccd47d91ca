package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/triage/pkg/domain"
)

// Start positions a fresh state at the start node.
// Any previous run of the session is discarded.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, domain.Step, error) {
	node, err := e.tree.Node(e.tree.Start)
	if err != nil {
		return nil, domain.Step{}, fmt.Errorf("failed to load start node: %w", err)
	}

	state := domain.NewState(sessionID)
	state.Status = domain.StatusActive
	state.CurrentNodeID = node.ID
	state.History = []string{node.ID}
	state.UpdatedAt = e.now()

	e.logger.Debug("triage started", "session_id", sessionID, "node_id", node.ID)
	e.emitNodeEnter(ctx, state, node.ID)

	if node.IsTerminal() {
		next, step := e.finish(ctx, state, node.ID, domain.Close(node.Prompt), 0)
		return next, step, nil
	}
	return state, domain.QuestionStep(node), nil
}

// Answer advances the state with an exact choice label.
// On error the input state is returned unchanged.
func (e *Engine) Answer(ctx context.Context, state *domain.State, choice string) (*domain.State, domain.Step, error) {
	if !state.Active() {
		return state, domain.Step{}, domain.ErrNoActiveSession
	}

	node, err := e.tree.Node(state.CurrentNodeID)
	if err != nil {
		return state, domain.Step{}, fmt.Errorf("failed to load node %s: %w", state.CurrentNodeID, err)
	}

	tr, ok := node.Transition(choice)
	if !ok {
		e.logger.Debug("choice rejected", "session_id", state.SessionID, "node_id", node.ID, "choice", choice)
		return state, domain.Step{}, &domain.InvalidChoiceError{
			NodeID:  node.ID,
			Choice:  choice,
			Allowed: node.Options(),
		}
	}

	next := state.Clone()
	next.UpdatedAt = e.now()

	switch tr.Kind() {
	case domain.TransitionNext:
		target, err := e.tree.Node(tr.Target())
		if err != nil {
			return state, domain.Step{}, &domain.UnknownTransitionTargetError{
				NodeID: node.ID,
				Choice: choice,
				Target: tr.Target(),
			}
		}
		e.emitNodeLeave(ctx, state, node.ID, choice)

		next.CurrentNodeID = target.ID
		next.History = append(next.History, target.ID)
		e.emitNodeEnter(ctx, next, target.ID)

		if target.IsTerminal() {
			done, step := e.finish(ctx, next, target.ID, domain.Close(target.Prompt), len(next.History)-1)
			return done, step, nil
		}
		return next, domain.QuestionStep(target), nil

	case domain.TransitionTerminal, domain.TransitionClose:
		e.emitNodeLeave(ctx, state, node.ID, choice)
		done, step := e.finish(ctx, next, node.ID, tr, len(next.History))
		return done, step, nil

	default:
		return state, domain.Step{}, fmt.Errorf("node %s choice %q has no transition", node.ID, choice)
	}
}

// Cancel resets the state unconditionally.
func (e *Engine) Cancel(ctx context.Context, state *domain.State) *domain.State {
	var sessionID string
	if state != nil {
		sessionID = state.SessionID
		if state.Active() {
			e.emitNodeLeave(ctx, state, state.CurrentNodeID, "")
		}
	}
	e.logger.Debug("triage cancelled", "session_id", sessionID)

	reset := domain.NewState(sessionID)
	reset.UpdatedAt = e.now()
	return reset
}

// finish resets the walker and records the outcome of the run.
// depth is the number of answers given in the run.
func (e *Engine) finish(ctx context.Context, state *domain.State, nodeID string, tr domain.Transition, depth int) (*domain.State, domain.Step) {
	rec := tr.Recommendation()

	state.CurrentNodeID = ""
	state.Status = domain.StatusTerminated
	state.Outcome = &rec

	e.logger.Info("triage finished",
		"session_id", state.SessionID,
		"node_id", nodeID,
		"specialization", string(rec.Specialization),
		"depth", depth)
	e.emitOutcome(ctx, state, nodeID, tr.Kind(), rec, depth)

	return state, domain.OutcomeStep(nodeID, rec)
}
