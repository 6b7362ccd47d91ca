package ports

import (
	"context"

	"github.com/aretw0/triage/pkg/domain"
)

// StatelessEngine defines the interface for walker cores that do not keep session state.
// This is the primary interface used by adapters (e.g., HTTP, MCP, Lambda) that
// manage state externally or per-request.
type StatelessEngine interface {
	// Start returns a fresh state positioned at the start node and the first step.
	Start(ctx context.Context, sessionID string) (*domain.State, domain.Step, error)

	// Answer advances the state with the chosen label.
	Answer(ctx context.Context, state *domain.State, choice string) (*domain.State, domain.Step, error)

	// Cancel resets the state unconditionally.
	Cancel(ctx context.Context, state *domain.State) *domain.State

	// Render returns the step for the current state without advancing it.
	Render(ctx context.Context, state *domain.State) (domain.Step, error)

	// Inspect returns the tree structure for introspection.
	Inspect() []domain.Node
}

// Classifier maps free text to a Recommendation.
type Classifier interface {
	Classify(ctx context.Context, text string) domain.Recommendation
}
