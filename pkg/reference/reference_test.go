package reference_test

import (
	"testing"

	"github.com/aretw0/triage/internal/validator"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_IsValidAndShallow(t *testing.T) {
	r := validator.Inspect(reference.Tree())
	require.NoError(t, r.Err())
	assert.Empty(t, r.Warnings)
	assert.Equal(t, 3, r.MaxDepth)
	assert.Len(t, r.Reachable, 8)
}

func TestTree_TerminalTags(t *testing.T) {
	tree := reference.Tree()
	var tags []domain.Specialization
	for _, n := range tree.Nodes() {
		for _, c := range n.Choices {
			if c.Transition.Kind() == domain.TransitionTerminal {
				tags = append(tags, c.Transition.Recommendation().Specialization)
			}
		}
	}
	for _, tag := range tags {
		assert.True(t, tag.Valid(), "tag %q", tag)
	}
	assert.Contains(t, tags, domain.MentalHealth)
}

func TestRules_Order(t *testing.T) {
	rules := reference.Rules()
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"neurological", "cardiac", "skin", "abdominal", "dental"}, ids)
}

func TestDoctors_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range reference.Doctors() {
		assert.False(t, seen[d.FullName], d.FullName)
		seen[d.FullName] = true
		assert.False(t, d.Recommended)
	}
	assert.Len(t, seen, 6)
}
