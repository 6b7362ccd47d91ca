package dsl

import (
	"fmt"

	"github.com/aretw0/triage/internal/validator"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	start string
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new tree builder. The first node added becomes the start
// node unless Start is called.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Start sets the entry node id.
func (b *Builder) Start(id string) *Builder {
	b.start = id
	return b
}

// Add creates a new node in the tree.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	if b.start == "" {
		b.start = id
	}
	return nb
}

// Nodes returns the nodes in insertion order.
func (b *Builder) Nodes() []domain.Node {
	nodes := make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id].node)
	}
	return nodes
}

// Build compiles and validates the tree.
func (b *Builder) Build() (*domain.Tree, error) {
	tree, err := domain.NewTree(b.start, b.Nodes()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}
	if err := validator.ValidateTree(tree); err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}
	return tree, nil
}

// MustBuild is like Build but panics on error. Intended for static trees.
func (b *Builder) MustBuild() *domain.Tree {
	tree, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tree
}

// BuildLoader compiles the tree into a memory Loader.
func (b *Builder) BuildLoader() (*memory.Loader, error) {
	tree, err := b.Build()
	if err != nil {
		return nil, err
	}
	return memory.FromTree(tree), nil
}
