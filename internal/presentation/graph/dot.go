package graph

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"

	"github.com/aretw0/triage/pkg/domain"
)

const graphName = "triage"

// GenerateDOT renders the tree as a Graphviz digraph. Outcome choices point at
// synthetic leaf nodes so every path ends in a visible result.
func GenerateDOT(tree *domain.Tree, overlay *GraphOverlay) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr(graphName, "rankdir", "TB"); err != nil {
		return "", err
	}

	visited := map[string]bool{}
	current := ""
	if overlay != nil {
		for _, id := range overlay.VisitedNodes {
			visited[id] = true
		}
		current = overlay.CurrentNode
	}

	for _, node := range tree.Nodes() {
		attrs := map[string]string{
			"label": quote(node.ID),
			"shape": "parallelogram",
		}
		switch {
		case node.ID == tree.Start:
			attrs["shape"] = "circle"
		case node.IsTerminal():
			attrs["shape"] = "oval"
		}
		switch {
		case node.ID == current:
			attrs["style"] = "filled"
			attrs["fillcolor"] = quote("#ffeb3b")
		case visited[node.ID]:
			attrs["style"] = "filled"
			attrs["fillcolor"] = quote("#e1f5fe")
		}
		if err := g.AddNode(graphName, quote(node.ID), attrs); err != nil {
			return "", fmt.Errorf("node %q: %w", node.ID, err)
		}
	}

	for _, node := range tree.Nodes() {
		for i, c := range node.Choices {
			dst := ""
			switch c.Transition.Kind() {
			case domain.TransitionNext:
				dst = quote(c.Transition.Target())
			case domain.TransitionTerminal:
				dst = quote(outcomeID(node.ID, i))
				rec := c.Transition.Recommendation()
				if err := g.AddNode(graphName, dst, map[string]string{
					"label": quote(string(rec.Specialization)),
					"shape": "hexagon",
				}); err != nil {
					return "", err
				}
			case domain.TransitionClose:
				dst = quote(outcomeID(node.ID, i))
				if err := g.AddNode(graphName, dst, map[string]string{
					"label": quote("close"),
					"shape": "oval",
				}); err != nil {
					return "", err
				}
			default:
				continue
			}
			if err := g.AddEdge(quote(node.ID), dst, true, map[string]string{
				"label": quote(c.Label),
			}); err != nil {
				return "", fmt.Errorf("edge %s -> %s: %w", node.ID, dst, err)
			}
		}
	}

	return g.String(), nil
}

func quote(s string) string {
	return strconv.Quote(s)
}
