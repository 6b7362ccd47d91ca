package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/triage/internal/classifier"
	"github.com/aretw0/triage/internal/config"
	"github.com/aretw0/triage/internal/dto"
	"github.com/aretw0/triage/internal/runtime"
	"github.com/aretw0/triage/internal/validator"
	"github.com/aretw0/triage/pkg/adapters/file"
	loamAdapter "github.com/aretw0/triage/pkg/adapters/loam"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/reference"
)

// Source is a tree and rule table loaded without validation.
type Source struct {
	Name  string
	Tree  *domain.Tree
	Rules []domain.ClassifierRule
	// Messages are the tree-wide defaults, with document overrides applied.
	Messages file.Messages
}

// LoadSource reads the tree and rules described by cfg. Unlike NewEngine it
// does not reject an invalid tree, so the caller can report every problem.
func LoadSource(cfg config.Config) (*Source, error) {
	src := &Source{
		Name:  "reference",
		Rules: reference.Rules(),
		Messages: file.Messages{
			Recommendation: reference.RecommendationMessage,
			Close:          reference.CloseMessage,
			Fallback:       reference.FallbackMessage,
		},
	}

	switch {
	case cfg.Tree == "":
		src.Tree = reference.Tree()
		if cfg.EntryNode != "" && cfg.EntryNode != src.Tree.Start {
			t, err := domain.NewTree(cfg.EntryNode, src.Tree.Nodes()...)
			if err != nil {
				return nil, err
			}
			src.Tree = t
		}
	case isDocument(cfg.Tree):
		doc, err := file.Load(cfg.Tree)
		if err != nil {
			return nil, err
		}
		if cfg.EntryNode != "" {
			doc.Start = cfg.EntryNode
		}
		if src.Tree, err = doc.Tree(); err != nil {
			return nil, err
		}
		if len(doc.Rules) > 0 {
			src.Rules = doc.Rules
		}
		src.mergeMessages(doc.Messages)
		src.Name = filepath.Base(cfg.Tree)
	default:
		loader, err := loamAdapter.Open(cfg.Tree, loamAdapter.WithDefaults(dto.Defaults{
			RecommendationMessage: reference.RecommendationMessage,
			CloseMessage:          reference.CloseMessage,
		}))
		if err != nil {
			return nil, err
		}
		entry := cfg.EntryNode
		if entry == "" {
			entry = determineEntryPoint(cfg.Tree)
		}
		if src.Tree, err = runtime.LoadTree(loader, entry); err != nil {
			return nil, err
		}
		src.Name = filepath.Base(cfg.Tree)
	}

	if cfg.Rules != "" {
		doc, err := file.Load(cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		if src.Rules, err = doc.LoadRules(); err != nil {
			return nil, err
		}
		src.mergeMessages(doc.Messages)
	}
	return src, nil
}

func (s *Source) mergeMessages(m file.Messages) {
	if m.Recommendation != "" {
		s.Messages.Recommendation = m.Recommendation
	}
	if m.Close != "" {
		s.Messages.Close = m.Close
	}
	if m.Fallback != "" {
		s.Messages.Fallback = m.Fallback
	}
}

// Validate prints a report of the tree structure and the rule table.
// It returns an error when the tree cannot be walked; rule findings are
// warnings only.
func Validate(cfg config.Config, w io.Writer) error {
	src, err := LoadSource(cfg)
	if err != nil {
		fmt.Fprintf(w, "✗ %v\n", err)
		return err
	}

	report := validator.Inspect(src.Tree)
	findings := classifier.Lint(src.Rules)

	fmt.Fprintf(w, "Tree %s (start %q, %d nodes)\n", src.Name, src.Tree.Start, src.Tree.Len())
	for _, e := range report.Errors {
		fmt.Fprintf(w, "  ✗ %v\n", e)
	}
	for _, warn := range report.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warn)
	}
	if len(report.Errors) == 0 {
		fmt.Fprintf(w, "  ✓ %d reachable nodes, at most %d answers to an outcome\n", len(report.Reachable), report.MaxDepth)
	}

	fmt.Fprintf(w, "Rules (%d)\n", len(src.Rules))
	for _, f := range findings {
		fmt.Fprintf(w, "  ! %s\n", f)
	}
	if len(findings) == 0 {
		fmt.Fprintln(w, "  ✓ every rule can match")
	}

	if err := report.Err(); err != nil {
		return fmt.Errorf("tree %s is invalid: %w", src.Name, err)
	}
	return nil
}

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
