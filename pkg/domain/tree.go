package domain

import (
	"fmt"
	"sort"
)

// DefaultStartNode is the entry node id used when none is configured.
const DefaultStartNode = "start"

// Tree is an id-indexed arena of nodes. Traversal is always by id lookup,
// so the structure holds no pointers between nodes.
type Tree struct {
	Start string
	nodes map[string]Node
}

// NewTree indexes nodes by id. Duplicate or empty ids are rejected.
// Referential integrity is checked separately by the validator.
func NewTree(start string, nodes ...Node) (*Tree, error) {
	if start == "" {
		start = DefaultStartNode
	}
	t := &Tree{Start: start, nodes: make(map[string]Node, len(nodes))}
	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node missing ID")
		}
		if _, exists := t.nodes[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node ID %q", n.ID)
		}
		t.nodes[n.ID] = n
	}
	return t, nil
}

// Node returns the node with the given id.
func (t *Tree) Node(id string) (Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// Has reports whether id is present in the tree.
func (t *Tree) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// IDs returns all node ids sorted for deterministic output.
func (t *Tree) IDs() []string {
	ids := make([]string, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns all nodes, start node first, the rest sorted by id.
func (t *Tree) Nodes() []Node {
	out := make([]Node, 0, len(t.nodes))
	if n, ok := t.nodes[t.Start]; ok {
		out = append(out, n)
	}
	for _, id := range t.IDs() {
		if id == t.Start {
			continue
		}
		out = append(out, t.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }
