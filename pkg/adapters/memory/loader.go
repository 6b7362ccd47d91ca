package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/triage/pkg/domain"
)

// Loader implements ports.TreeLoader using an in-memory map.
type Loader struct {
	nodes map[string]domain.Node
}

// NewFromNodes creates a new Loader from domain objects.
func NewFromNodes(nodes ...domain.Node) (*Loader, error) {
	data := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node missing ID")
		}
		if _, exists := data[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node ID %q", n.ID)
		}
		data[n.ID] = n
	}
	return &Loader{nodes: data}, nil
}

// FromTree exposes an already built tree through the loader port.
func FromTree(t *domain.Tree) *Loader {
	l, _ := NewFromNodes(t.Nodes()...)
	return l
}

// GetNode retrieves a node by ID.
func (l *Loader) GetNode(id string) (domain.Node, error) {
	n, ok := l.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n, nil
}

// ListNodes returns all available node IDs.
func (l *Loader) ListNodes() ([]string, error) {
	keys := make([]string, 0, len(l.nodes))
	for k := range l.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}

// Rules implements ports.RuleLoader over a fixed slice.
type Rules []domain.ClassifierRule

// LoadRules returns a copy of the rules in declared order.
func (r Rules) LoadRules() ([]domain.ClassifierRule, error) {
	out := make([]domain.ClassifierRule, len(r))
	copy(out, r)
	return out, nil
}
