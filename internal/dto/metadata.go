package dto

import (
	"fmt"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// NodeMetadata represents the header/metadata of a triage node as written in
// frontmatter or YAML files.
type NodeMetadata struct {
	ID      string           `json:"id" yaml:"id" mapstructure:"id"`
	Prompt  string           `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`
	Choices []ChoiceMetadata `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`

	// General Metadata
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" mapstructure:"metadata"`
}

// ChoiceMetadata is one option. Exactly one of Next (or To), Recommend or
// Close must be set.
//
// Recommend accepts either a bare tag ("cardiology") or a map with
// "specialization" and "message" keys. Close accepts a message string or
// true for the default closing message.
type ChoiceMetadata struct {
	Label     string `json:"label" yaml:"label" mapstructure:"label"`
	Next      string `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`
	To        string `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
	Recommend any    `json:"recommend,omitempty" yaml:"recommend,omitempty" mapstructure:"recommend"`
	Close     any    `json:"close,omitempty" yaml:"close,omitempty" mapstructure:"close"`
}

// RecommendMetadata is the long form of ChoiceMetadata.Recommend.
type RecommendMetadata struct {
	Specialization string `mapstructure:"specialization"`
	Message        string `mapstructure:"message"`
}

// Defaults fills messages omitted by the short forms.
type Defaults struct {
	RecommendationMessage string
	CloseMessage          string
}

// ToNode converts metadata into a domain node. fallbackID is used when the
// metadata carries no id (e.g. derived from a filename) and body when it has
// no prompt (e.g. the markdown body).
func (m NodeMetadata) ToNode(fallbackID, body string, d Defaults) (domain.Node, error) {
	id := m.ID
	if id == "" {
		id = fallbackID
	}
	prompt := m.Prompt
	if prompt == "" {
		prompt = strings.TrimSpace(body)
	}

	node := domain.Node{ID: id, Prompt: prompt, Metadata: m.Metadata}
	for i, c := range m.Choices {
		tr, err := c.transition(d)
		if err != nil {
			return domain.Node{}, fmt.Errorf("node %s choice #%d (%q): %w", id, i+1, c.Label, err)
		}
		node.Choices = append(node.Choices, domain.Choice{Label: c.Label, Transition: tr})
	}
	return node, nil
}

func (c ChoiceMetadata) transition(d Defaults) (domain.Transition, error) {
	next := c.Next
	if next == "" {
		next = c.To
	}

	set := 0
	for _, present := range []bool{next != "", c.Recommend != nil, c.Close != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return domain.Transition{}, fmt.Errorf("expected exactly one of next, recommend or close, got %d", set)
	}

	switch {
	case next != "":
		return domain.Next(next), nil
	case c.Recommend != nil:
		rec, err := decodeRecommend(c.Recommend, d)
		if err != nil {
			return domain.Transition{}, err
		}
		return domain.Terminal(rec), nil
	default:
		msg, err := decodeClose(c.Close, d)
		if err != nil {
			return domain.Transition{}, err
		}
		return domain.Close(msg), nil
	}
}

func decodeRecommend(raw any, d Defaults) (domain.Recommendation, error) {
	var meta RecommendMetadata
	switch v := raw.(type) {
	case string:
		meta.Specialization = v
	default:
		if err := mapstructure.Decode(v, &meta); err != nil {
			return domain.Recommendation{}, fmt.Errorf("invalid recommend: %w", err)
		}
	}

	spec, err := domain.ParseSpecialization(meta.Specialization)
	if err != nil {
		return domain.Recommendation{}, err
	}
	if meta.Message == "" {
		meta.Message = d.RecommendationMessage
	}
	return domain.Recommend(spec, meta.Message), nil
}

func decodeClose(raw any, d Defaults) (string, error) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return d.CloseMessage, nil
		}
		return v, nil
	case bool:
		if !v {
			return "", fmt.Errorf("close: false is not a transition")
		}
		return d.CloseMessage, nil
	default:
		return "", fmt.Errorf("close must be a message or true, got %T", raw)
	}
}

// FromNode converts a domain node back into metadata (short forms where possible).
func FromNode(n domain.Node) NodeMetadata {
	m := NodeMetadata{ID: n.ID, Prompt: n.Prompt, Metadata: n.Metadata}
	for _, c := range n.Choices {
		cm := ChoiceMetadata{Label: c.Label}
		tr := c.Transition
		switch tr.Kind() {
		case domain.TransitionNext:
			cm.Next = tr.Target()
		case domain.TransitionTerminal:
			rec := tr.Recommendation()
			cm.Recommend = map[string]any{"specialization": string(rec.Specialization), "message": rec.Message}
		case domain.TransitionClose:
			cm.Close = tr.Recommendation().Message
		}
		m.Choices = append(m.Choices, cm)
	}
	return m
}
