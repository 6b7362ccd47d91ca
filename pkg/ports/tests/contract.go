package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// TreeLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TreeLoader.
// want holds the nodes the loader is expected to serve, keyed by ID.
func TreeLoaderContractTest(t *testing.T, loader ports.TreeLoader, want map[string]domain.Node) {
	t.Helper()

	t.Run("GetNode_Success", func(t *testing.T) {
		for id, expected := range want {
			got, err := loader.GetNode(id)
			if err != nil {
				t.Fatalf("unexpected error getting node %s: %v", id, err)
			}
			opts := []cmp.Option{
				cmp.AllowUnexported(domain.Transition{}),
				cmpopts.IgnoreFields(domain.Node{}, "Metadata"),
				cmpopts.EquateEmpty(),
			}
			if d := cmp.Diff(expected, got, opts...); d != "" {
				t.Errorf("node %s mismatch (-want +got):\n%s", id, d)
			}
		}
	})

	t.Run("GetNode_NotFound", func(t *testing.T) {
		_, err := loader.GetNode("non-existent-node")
		if err == nil {
			t.Fatal("expected error for non-existent node, got nil")
		}
		if !errors.Is(err, domain.ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
	})

	t.Run("ListNodes", func(t *testing.T) {
		nodes, err := loader.ListNodes()
		if err != nil {
			t.Fatalf("unexpected error listing nodes: %v", err)
		}

		if len(nodes) != len(want) {
			t.Errorf("expected %d nodes, got %d", len(want), len(nodes))
		}

		lookup := make(map[string]bool)
		for _, id := range nodes {
			lookup[id] = true
		}

		for id := range want {
			if !lookup[id] {
				t.Errorf("node %s missing from list", id)
			}
		}
	})
}

// RuleLoaderContractTest verifies that a RuleLoader returns rules in declared order.
func RuleLoaderContractTest(t *testing.T, loader ports.RuleLoader, want []domain.ClassifierRule) {
	t.Helper()

	got, err := loader.LoadRules()
	if err != nil {
		t.Fatalf("unexpected error loading rules: %v", err)
	}
	if d := cmp.Diff(want, got, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", d)
	}
}
