package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/triage/internal/validator"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
)

// Engine is the stateless walker core. It never holds session state:
// every call takes a State and returns the next one.
type Engine struct {
	tree   *domain.Tree
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for UpdatedAt and events.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine validates the tree and returns an engine that walks it.
// A tree with dangling targets, malformed choices or cycles is rejected.
func NewEngine(tree *domain.Tree, opts ...EngineOption) (*Engine, error) {
	if err := validator.ValidateTree(tree); err != nil {
		return nil, fmt.Errorf("invalid triage tree: %w", err)
	}

	e := &Engine{
		tree:   tree,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// LoadTree reads every node exposed by a loader into an in-memory tree.
func LoadTree(loader ports.TreeLoader, startNodeID string) (*domain.Tree, error) {
	ids, err := loader.ListNodes()
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	nodes := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		n, err := loader.GetNode(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load node %s: %w", id, err)
		}
		nodes = append(nodes, n)
	}
	return domain.NewTree(startNodeID, nodes...)
}

// Tree returns the tree walked by the engine.
func (e *Engine) Tree() *domain.Tree {
	return e.tree
}

// Inspect returns the full tree for visualization or introspection tools.
func (e *Engine) Inspect() []domain.Node {
	return e.tree.Nodes()
}

var _ ports.StatelessEngine = (*Engine)(nil)
