package ports

import (
	"context"

	"github.com/aretw0/triage/pkg/domain"
)

// TreeLoader defines how the engine retrieves node definitions.
// This allows the storage layer (Loam, YAML, Memory) to be decoupled.
type TreeLoader interface {
	// GetNode retrieves a node by ID.
	// It returns an error wrapping domain.ErrNodeNotFound when the ID is unknown.
	GetNode(id string) (domain.Node, error)

	// ListNodes returns the IDs of all nodes available in the tree.
	// This is used for eager validation and introspection tools (e.g. 'triage graph').
	ListNodes() ([]string, error)
}

// RuleLoader supplies the classifier rule table in evaluation order.
type RuleLoader interface {
	LoadRules() ([]domain.ClassifierRule, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying tree changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
