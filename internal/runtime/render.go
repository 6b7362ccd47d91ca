package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/triage/pkg/domain"
)

// Render returns the step for the current state without advancing it.
// A finished run renders its outcome; an idle state has nothing to render.
func (e *Engine) Render(_ context.Context, state *domain.State) (domain.Step, error) {
	switch {
	case state.Active():
		node, err := e.tree.Node(state.CurrentNodeID)
		if err != nil {
			return domain.Step{}, fmt.Errorf("failed to load node %s: %w", state.CurrentNodeID, err)
		}
		return domain.QuestionStep(node), nil
	case state != nil && state.Status == domain.StatusTerminated && state.Outcome != nil:
		var last string
		if len(state.History) > 0 {
			last = state.History[len(state.History)-1]
		}
		return domain.OutcomeStep(last, *state.Outcome), nil
	default:
		return domain.Step{}, domain.ErrNoActiveSession
	}
}
