package domain

// Choice is one selectable option of a Node.
type Choice struct {
	Label      string     `json:"label"`
	Transition Transition `json:"transition"`
}

// Node is a question in the triage tree.
// A node without choices is terminal: reaching it ends the session and its
// Prompt becomes the closing message.
type Node struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Choices []Choice `json:"choices,omitempty"`

	// Metadata allows for extensible key-value pairs (e.g. source file).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Options returns the choice labels in display order.
func (n Node) Options() []string {
	opts := make([]string, len(n.Choices))
	for i, c := range n.Choices {
		opts[i] = c.Label
	}
	return opts
}

// Transition looks up the transition for an exact (case-sensitive) label.
func (n Node) Transition(label string) (Transition, bool) {
	for _, c := range n.Choices {
		if c.Label == label {
			return c.Transition, true
		}
	}
	return Transition{}, false
}

// IsTerminal reports whether the node ends the session when entered.
func (n Node) IsTerminal() bool {
	return len(n.Choices) == 0
}
