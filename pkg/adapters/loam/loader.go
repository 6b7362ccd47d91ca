package loam

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/triage/internal/dto"
	"github.com/aretw0/triage/pkg/domain"
)

// NodeMetadata is the frontmatter schema of a node document.
type NodeMetadata = dto.NodeMetadata

// Loader adapts the Loam library to the triage TreeLoader interface.
// Each document is one node: the frontmatter holds the id and choices, the
// body holds the prompt.
type Loader struct {
	Repo     *loam.TypedRepository[NodeMetadata]
	defaults dto.Defaults
}

// Option configures the Loader.
type Option func(*Loader)

// WithDefaults sets the messages used by short-form recommend/close choices.
func WithDefaults(d dto.Defaults) Option {
	return func(l *Loader) {
		l.defaults = d
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[NodeMetadata], opts ...Option) *Loader {
	l := &Loader{Repo: repo}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a read-only, strict Loam repository at path.
// The engine never modifies the tree, only reads it.
func Open(path string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo), opts...), nil
}

// GetNode retrieves a node from the Loam repository.
// Loam resolves "start" to start.md (or .json/.yaml).
func (l *Loader) GetNode(id string) (domain.Node, error) {
	ctx := context.Background()

	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return domain.Node{}, fmt.Errorf("loam get failed for %s: %w", id, errors.Join(domain.ErrNodeNotFound, err))
	}

	meta := doc.Data
	if meta.ID != "" {
		meta.ID = trimExtension(meta.ID)
	}
	node, err := meta.ToNode(trimExtension(doc.ID), doc.Content, l.defaults)
	if err != nil {
		return domain.Node{}, fmt.Errorf("invalid node document %s: %w", doc.ID, err)
	}
	if node.Metadata == nil {
		node.Metadata = make(map[string]string)
	}
	node.Metadata["source"] = doc.ID
	return node, nil
}

// ListNodes lists all nodes in the repository.
func (l *Loader) ListNodes() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: a pending signal already means "reload".
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}
