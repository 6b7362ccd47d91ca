package triage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/triage/internal/classifier"
	"github.com/aretw0/triage/internal/dto"
	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/runtime"
	"github.com/aretw0/triage/pkg/adapters/file"
	loamAdapter "github.com/aretw0/triage/pkg/adapters/loam"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/aretw0/triage/pkg/reference"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// Engine bundles the tree walker and the free-text classifier.
// It is safe for concurrent use: per-conversation state lives in a Walker
// or in a domain.State passed to the stateless methods.
type Engine struct {
	runtime    *runtime.Engine
	classifier *classifier.Classifier

	loader     ports.TreeLoader
	tree       *domain.Tree
	ruleLoader ports.RuleLoader
	entryNode  string
	fallback   string
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	Name       string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTree uses an in-memory tree, bypassing any loader.
func WithTree(tree *domain.Tree) Option {
	return func(e *Engine) {
		e.tree = tree
	}
}

// WithLoader injects a custom TreeLoader, bypassing the default source resolution.
func WithLoader(l ports.TreeLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithRules sets the classifier rule table, in priority order.
func WithRules(rules []domain.ClassifierRule) Option {
	return func(e *Engine) {
		e.ruleLoader = memory.Rules(rules)
	}
}

// WithRuleLoader reads the classifier rule table from a loader.
func WithRuleLoader(l ports.RuleLoader) Option {
	return func(e *Engine) {
		e.ruleLoader = l
	}
}

// WithEntryNode configures the initial node ID (default: "start").
func WithEntryNode(nodeID string) Option {
	return func(e *Engine) {
		e.entryNode = nodeID
	}
}

// WithFallbackMessage overrides the classifier's no-match message.
func WithFallbackMessage(msg string) Option {
	return func(e *Engine) {
		e.fallback = msg
	}
}

// WithLifecycleHooks registers observability hooks on both the walker and
// the classifier.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine.
//
// source selects where the tree comes from when neither WithTree nor
// WithLoader is given:
//   - "" uses the built-in reference tree and rules;
//   - a .yaml, .yml or .json path is read as a single document holding
//     nodes, rules and messages;
//   - anything else is opened as a Loam repository with one node per file.
//
// The tree is validated eagerly; a dangling target or a cycle is an error.
func New(source string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if err := eng.resolveSource(source); err != nil {
		return nil, err
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("tree", eng.Name)
	}

	tree, err := eng.resolveTree()
	if err != nil {
		return nil, err
	}

	rules := reference.Rules()
	if eng.ruleLoader != nil {
		rules, err = eng.ruleLoader.LoadRules()
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
	}

	eng.runtime, err = runtime.NewEngine(tree,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	if err != nil {
		return nil, err
	}

	classifierOpts := []classifier.Option{
		classifier.WithLifecycleHooks(eng.hooks),
		classifier.WithLogger(eng.logger),
	}
	if eng.fallback != "" {
		classifierOpts = append(classifierOpts, classifier.WithFallback(eng.fallback))
	}
	eng.classifier = classifier.New(rules, classifierOpts...)
	eng.tree = tree
	return eng, nil
}

func (e *Engine) resolveSource(source string) error {
	if e.tree != nil || e.loader != nil || source == "" {
		if source != "" {
			e.Name = filepath.Base(source)
		}
		return nil
	}

	absPath, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	e.Name = filepath.Base(absPath)

	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".yaml", ".yml", ".json":
		doc, err := file.Load(absPath)
		if err != nil {
			return err
		}
		if e.entryNode != "" {
			doc.Start = e.entryNode
		}
		if e.loader, err = file.NewLoader(doc); err != nil {
			return err
		}
		if e.entryNode == "" {
			e.entryNode = doc.Start
		}
		if e.ruleLoader == nil && len(doc.Rules) > 0 {
			e.ruleLoader = doc
		}
		if e.fallback == "" {
			e.fallback = doc.Messages.Fallback
		}
	default:
		e.loader, err = loamAdapter.Open(absPath, loamAdapter.WithDefaults(dto.Defaults{
			RecommendationMessage: reference.RecommendationMessage,
			CloseMessage:          reference.CloseMessage,
		}))
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) resolveTree() (*domain.Tree, error) {
	switch {
	case e.tree != nil:
		if e.entryNode == "" || e.entryNode == e.tree.Start {
			return e.tree, nil
		}
		return domain.NewTree(e.entryNode, e.tree.Nodes()...)
	case e.loader != nil:
		tree, err := runtime.LoadTree(e.loader, e.entryNode)
		if err != nil {
			return nil, fmt.Errorf("failed to load tree: %w", err)
		}
		return tree, nil
	default:
		tree := reference.Tree()
		if e.entryNode != "" && e.entryNode != tree.Start {
			return domain.NewTree(e.entryNode, tree.Nodes()...)
		}
		return tree, nil
	}
}

// Start creates the initial state for a session and returns the first step.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, domain.Step, error) {
	return e.runtime.Start(ctx, sessionID)
}

// Answer advances state with the chosen label.
func (e *Engine) Answer(ctx context.Context, state *domain.State, choice string) (*domain.State, domain.Step, error) {
	return e.runtime.Answer(ctx, state, choice)
}

// Cancel resets state unconditionally.
func (e *Engine) Cancel(ctx context.Context, state *domain.State) *domain.State {
	return e.runtime.Cancel(ctx, state)
}

// Render returns the step for state without advancing it.
func (e *Engine) Render(ctx context.Context, state *domain.State) (domain.Step, error) {
	return e.runtime.Render(ctx, state)
}

// Classify maps free text to a recommendation. It never fails.
func (e *Engine) Classify(ctx context.Context, text string) domain.Recommendation {
	return e.classifier.Classify(ctx, text)
}

// Inspect returns the full tree for visualization or introspection tools.
func (e *Engine) Inspect() []domain.Node {
	return e.runtime.Inspect()
}

// Tree returns the validated tree.
func (e *Engine) Tree() *domain.Tree {
	return e.tree
}

// Rules returns the classifier rule table in priority order.
func (e *Engine) Rules() []domain.ClassifierRule {
	return e.classifier.Rules()
}

// Stateless returns the stateless walker, for hosts that keep state themselves.
func (e *Engine) Stateless() ports.StatelessEngine {
	return e.runtime
}

// Classifier returns the free-text classifier.
func (e *Engine) Classifier() *classifier.Classifier {
	return e.classifier
}

// Watch returns a channel that signals when the underlying tree changes.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, errors.New("current loader does not support watching")
}

// NewWalker returns a walker owned by a single conversation.
func (e *Engine) NewWalker(sessionID string) *Walker {
	return &Walker{engine: e.runtime, state: domain.NewState(sessionID)}
}

// Walker holds the position of one conversation in the tree.
// It is not safe for concurrent use; give each conversation its own.
type Walker struct {
	engine *runtime.Engine
	state  *domain.State
}

// Start positions the walker at the start node, discarding any previous walk.
func (w *Walker) Start(ctx context.Context) (domain.Step, error) {
	state, step, err := w.engine.Start(ctx, w.state.SessionID)
	if err != nil {
		return domain.Step{}, err
	}
	w.state = state
	return step, nil
}

// Answer applies choice at the current node. On error the walker does not move.
func (w *Walker) Answer(ctx context.Context, choice string) (domain.Step, error) {
	state, step, err := w.engine.Answer(ctx, w.state, choice)
	if err != nil {
		return domain.Step{}, err
	}
	w.state = state
	return step, nil
}

// Cancel abandons the walk.
func (w *Walker) Cancel(ctx context.Context) {
	w.state = w.engine.Cancel(ctx, w.state)
}

// Active reports whether the walker is waiting for an answer.
func (w *Walker) Active() bool {
	return w.state.Active()
}

// State returns a copy of the walker's state.
func (w *Walker) State() *domain.State {
	return w.state.Clone()
}
