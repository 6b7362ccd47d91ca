package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/triage/internal/runtime"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered, left []string
	var outcomes []*domain.OutcomeEvent

	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.NodeID)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			left = append(left, e.NodeID+":"+e.Choice)
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			outcomes = append(outcomes, e)
		},
	}
	e := newEngine(t, runtime.WithLifecycleHooks(hooks))

	state, _, err := e.Start(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"start"}, entered)

	answerAll(t, e, state, "Yes", "No", "No")

	assert.Equal(t, []string{"start", "pain_location", "body_pain", "end"}, entered)
	assert.Equal(t, []string{"start:Yes", "pain_location:No", "body_pain:No"}, left)

	require.Len(t, outcomes, 1)
	assert.Equal(t, "end", outcomes[0].NodeID)
	assert.Equal(t, domain.TransitionClose, outcomes[0].Kind)
	assert.Equal(t, 3, outcomes[0].Depth)
	assert.Equal(t, "s1", outcomes[0].SessionID)
}

func TestEngine_DepthNeverExceedsThree(t *testing.T) {
	var depths []int
	hooks := domain.LifecycleHooks{
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) { depths = append(depths, e.Depth) },
	}
	e := newEngine(t, runtime.WithLifecycleHooks(hooks))

	// Enumerate every path of the reference tree.
	var walk func(state *domain.State, step domain.Step)
	walk = func(state *domain.State, step domain.Step) {
		if step.Terminal {
			return
		}
		for _, c := range step.Choices {
			next, nextStep, err := e.Answer(context.Background(), state, c)
			require.NoError(t, err)
			walk(next, nextStep)
		}
	}
	state, step, _ := e.Start(context.Background(), "s1")
	walk(state, step)

	require.NotEmpty(t, depths)
	for _, d := range depths {
		assert.LessOrEqual(t, d, 3)
	}
	assert.Len(t, depths, 9)
}

func TestEngine_CancelEmitsLeave(t *testing.T) {
	var left []string
	hooks := domain.LifecycleHooks{
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) { left = append(left, e.NodeID) },
	}
	e := newEngine(t, runtime.WithLifecycleHooks(hooks))

	state, _, _ := e.Start(context.Background(), "s1")
	e.Cancel(context.Background(), state)
	assert.Equal(t, []string{"start"}, left)
}
