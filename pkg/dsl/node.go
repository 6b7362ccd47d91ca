package dsl

import "github.com/aretw0/triage/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Question sets the prompt shown when the node is entered.
func (n *NodeBuilder) Question(prompt string) *NodeBuilder {
	n.node.Prompt = prompt
	return n
}

// Go adds a choice that moves to the target node.
func (n *NodeBuilder) Go(label, target string) *NodeBuilder {
	return n.Choice(label, domain.Next(target))
}

// Recommend adds a choice that ends the session with a specialization.
func (n *NodeBuilder) Recommend(label string, s domain.Specialization, message string) *NodeBuilder {
	return n.Choice(label, domain.Terminal(domain.Recommend(s, message)))
}

// Close adds a choice that ends the session with a neutral message.
func (n *NodeBuilder) Close(label, message string) *NodeBuilder {
	return n.Choice(label, domain.Close(message))
}

// Choice adds a choice with an explicit transition.
func (n *NodeBuilder) Choice(label string, t domain.Transition) *NodeBuilder {
	n.node.Choices = append(n.node.Choices, domain.Choice{Label: label, Transition: t})
	return n
}

// Terminal marks the node as terminal: entering it ends the session and
// message becomes the closing text.
func (n *NodeBuilder) Terminal(message string) *NodeBuilder {
	n.node.Prompt = message
	n.node.Choices = nil
	return n
}

// Meta attaches a metadata key to the node.
func (n *NodeBuilder) Meta(key, value string) *NodeBuilder {
	if n.node.Metadata == nil {
		n.node.Metadata = make(map[string]string)
	}
	n.node.Metadata[key] = value
	return n
}

// Add is a shortcut to start the next node from the same builder.
func (n *NodeBuilder) Add(id string) *NodeBuilder {
	return n.builder.Add(id)
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
