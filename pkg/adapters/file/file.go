// Package file loads triage trees and classifier rules from a single YAML
// or JSON document.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/triage/internal/dto"
	"github.com/aretw0/triage/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Messages holds the shared texts referenced by short-form choices.
type Messages struct {
	Recommendation string `yaml:"recommendation,omitempty" json:"recommendation,omitempty"`
	Close          string `yaml:"close,omitempty" json:"close,omitempty"`
	Fallback       string `yaml:"fallback,omitempty" json:"fallback,omitempty"`
}

// Document represents the structure of a triage.yaml file.
type Document struct {
	Start    string                  `yaml:"start,omitempty" json:"start,omitempty"`
	Messages Messages                `yaml:"messages,omitempty" json:"messages,omitempty"`
	Nodes    []dto.NodeMetadata      `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	Rules    []domain.ClassifierRule `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Load reads a document (YAML or JSON, by extension).
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a document. ext selects JSON when ".json", YAML otherwise.
func Parse(data []byte, ext string) (*Document, error) {
	var doc Document
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse json document: %w", err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml document: %w", err)
		}
	}
	return &doc, nil
}

func (d *Document) defaults() dto.Defaults {
	return dto.Defaults{
		RecommendationMessage: d.Messages.Recommendation,
		CloseMessage:          d.Messages.Close,
	}
}

// Tree converts the node list into a domain tree.
func (d *Document) Tree() (*domain.Tree, error) {
	if len(d.Nodes) == 0 {
		return nil, fmt.Errorf("document has no nodes")
	}
	nodes := make([]domain.Node, 0, len(d.Nodes))
	for i, m := range d.Nodes {
		n, err := m.ToNode("", "", d.defaults())
		if err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	return domain.NewTree(d.Start, nodes...)
}

// LoadRules implements ports.RuleLoader.
func (d *Document) LoadRules() ([]domain.ClassifierRule, error) {
	if len(d.Rules) == 0 {
		return nil, fmt.Errorf("document has no rules")
	}
	out := make([]domain.ClassifierRule, len(d.Rules))
	copy(out, d.Rules)
	return out, nil
}

// Loader implements ports.TreeLoader over a parsed document.
type Loader struct {
	nodes map[string]domain.Node
}

// NewLoader converts every node of the document eagerly.
func NewLoader(d *Document) (*Loader, error) {
	tree, err := d.Tree()
	if err != nil {
		return nil, err
	}
	l := &Loader{nodes: make(map[string]domain.Node, tree.Len())}
	for _, n := range tree.Nodes() {
		l.nodes[n.ID] = n
	}
	return l, nil
}

// GetNode retrieves a node by ID.
func (l *Loader) GetNode(id string) (domain.Node, error) {
	n, ok := l.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n, nil
}

// ListNodes returns all node IDs sorted.
func (l *Loader) ListNodes() ([]string, error) {
	ids := make([]string, 0, len(l.nodes))
	for id := range l.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Export renders a tree and rule table as a document.
func Export(tree *domain.Tree, rules []domain.ClassifierRule, messages Messages) *Document {
	doc := &Document{Start: tree.Start, Messages: messages, Rules: rules}
	for _, n := range tree.Nodes() {
		doc.Nodes = append(doc.Nodes, dto.FromNode(n))
	}
	return doc
}

// Marshal encodes the document as YAML, or JSON when ext is ".json".
func (d *Document) Marshal(ext string) ([]byte, error) {
	if strings.EqualFold(ext, ".json") {
		return json.MarshalIndent(d, "", "  ")
	}
	return yaml.Marshal(d)
}
