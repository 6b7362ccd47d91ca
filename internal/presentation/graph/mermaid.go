package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
)

// GraphOverlay contains dynamic session data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromState highlights the path taken by a session.
func OverlayFromState(state *domain.State) *GraphOverlay {
	if state == nil {
		return nil
	}
	return &GraphOverlay{
		VisitedNodes: append([]string(nil), state.History...),
		CurrentNode:  state.CurrentNodeID,
	}
}

// GenerateMermaid produces a Mermaid flowchart for a triage tree.
// Shapes:
//   - start node: ((Circle))
//   - question: [/Parallelogram/]
//   - terminal node: ([Stadium])
//   - recommendation outcome: {{Hexagon}}
//   - close outcome: ([Stadium])
func GenerateMermaid(tree *domain.Tree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range tree.Nodes() {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[/", "/]"
		switch {
		case node.ID == tree.Start:
			opener, closer = "((", "))"
		case node.IsTerminal():
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer)

		for i, c := range node.Choices {
			label := escapeLabel(c.Label)
			switch c.Transition.Kind() {
			case domain.TransitionNext:
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(c.Transition.Target()))
			case domain.TransitionTerminal:
				leaf := outcomeID(node.ID, i)
				rec := c.Transition.Recommendation()
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s{{\"%s\"}}\n", safeID, label, leaf, rec.Specialization)
			case domain.TransitionClose:
				leaf := outcomeID(node.ID, i)
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s([\"close\"])\n", safeID, label, leaf)
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visited[safeID] && safeID != "" && tree.Has(id) {
				visited[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func outcomeID(nodeID string, choice int) string {
	return fmt.Sprintf("%s__out%d", sanitizeMermaidID(nodeID), choice)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
