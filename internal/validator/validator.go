package validator

import (
	"errors"
	"fmt"

	"github.com/aretw0/triage/pkg/domain"
)

// ErrCycle is reported when a chain of Next transitions returns to a node
// already on the path, which would let a session run forever.
var ErrCycle = errors.New("cycle detected")

// Report is the outcome of inspecting a tree.
type Report struct {
	// Errors make the tree unusable by the engine.
	Errors []error
	// Warnings flag suspicious but walkable structure (e.g. unreachable nodes).
	Warnings []string
	// MaxDepth is the longest number of answers from the start node to an outcome.
	// It is only meaningful when Errors is empty.
	MaxDepth int
	// Reachable lists node ids reachable from the start node, in visit order.
	Reachable []string
}

// Err joins all errors of the report, or returns nil.
func (r Report) Err() error {
	return errors.Join(r.Errors...)
}

// ValidateTree checks for broken links, malformed choices and cycles.
func ValidateTree(tree *domain.Tree) error {
	return Inspect(tree).Err()
}

// Inspect runs every structural check and collects the findings.
func Inspect(tree *domain.Tree) Report {
	var r Report
	if tree == nil {
		r.Errors = append(r.Errors, fmt.Errorf("tree is nil"))
		return r
	}
	if !tree.Has(tree.Start) {
		r.Errors = append(r.Errors, fmt.Errorf("start node %q: %w", tree.Start, domain.ErrNodeNotFound))
		return r
	}

	for _, n := range tree.Nodes() {
		r.Errors = append(r.Errors, checkNode(tree, n)...)
	}

	// Crawler
	visited := make(map[string]bool)
	queue := []string{tree.Start}
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true
		r.Reachable = append(r.Reachable, currentID)

		node, err := tree.Node(currentID)
		if err != nil {
			continue // already reported as a dangling target
		}
		for _, c := range node.Choices {
			if c.Transition.Kind() == domain.TransitionNext && !visited[c.Transition.Target()] {
				queue = append(queue, c.Transition.Target())
			}
		}
	}

	for _, id := range tree.IDs() {
		if !visited[id] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("node %q is unreachable from %q", id, tree.Start))
		}
	}

	depth, err := maxDepth(tree)
	if err != nil {
		r.Errors = append(r.Errors, err)
	} else if len(r.Errors) == 0 {
		r.MaxDepth = depth
	}
	return r
}

func checkNode(tree *domain.Tree, n domain.Node) []error {
	var errs []error
	seen := make(map[string]bool, len(n.Choices))
	for i, c := range n.Choices {
		if c.Label == "" {
			errs = append(errs, fmt.Errorf("node %q choice #%d has an empty label", n.ID, i+1))
		}
		if seen[c.Label] {
			errs = append(errs, fmt.Errorf("node %q has duplicate choice %q", n.ID, c.Label))
		}
		seen[c.Label] = true

		tr := c.Transition
		switch tr.Kind() {
		case domain.TransitionNext:
			if !tree.Has(tr.Target()) {
				errs = append(errs, &domain.UnknownTransitionTargetError{NodeID: n.ID, Choice: c.Label, Target: tr.Target()})
			}
		case domain.TransitionTerminal:
			spec := tr.Recommendation().Specialization
			if spec != "" && !spec.Valid() {
				errs = append(errs, fmt.Errorf("node %q choice %q: %w: %q", n.ID, c.Label, domain.ErrInvalidSpecialization, spec))
			}
		case domain.TransitionClose:
		default:
			errs = append(errs, fmt.Errorf("node %q choice %q has no transition", n.ID, c.Label))
		}
	}
	return errs
}

// maxDepth walks every path with a DFS, failing on the first cycle.
func maxDepth(tree *domain.Tree) (int, error) {
	const (
		unvisited = iota
		onPath
		done
	)
	color := make(map[string]int)
	memo := make(map[string]int)

	var visit func(id string) (int, error)
	visit = func(id string) (int, error) {
		switch color[id] {
		case onPath:
			return 0, fmt.Errorf("%w: node %q is revisited", ErrCycle, id)
		case done:
			return memo[id], nil
		}
		node, err := tree.Node(id)
		if err != nil || node.IsTerminal() {
			color[id] = done
			return 0, nil
		}
		color[id] = onPath
		best := 0
		for _, c := range node.Choices {
			d := 1
			if c.Transition.Kind() == domain.TransitionNext {
				sub, err := visit(c.Transition.Target())
				if err != nil {
					return 0, err
				}
				d += sub
			}
			if d > best {
				best = d
			}
		}
		color[id] = done
		memo[id] = best
		return best, nil
	}
	return visit(tree.Start)
}
