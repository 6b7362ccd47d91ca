package classifier_test

import (
	"testing"

	"github.com/aretw0/triage/internal/classifier"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_ReferenceRulesAreClean(t *testing.T) {
	assert.Empty(t, classifier.Lint(reference.Rules()))
}

func TestLint_ShadowedRule(t *testing.T) {
	rules := []domain.ClassifierRule{
		{ID: "pain", Keywords: []string{"pain"}, Specialization: domain.General, Message: "gp"},
		{ID: "back", Keywords: []string{"back pain", "painful"}, Specialization: domain.Orthopedics, Message: "ortho"},
		{ID: "knee", Keywords: []string{"knee pain", "knee"}, Specialization: domain.Orthopedics, Message: "ortho"},
	}

	findings := classifier.Lint(rules)
	require.Len(t, findings, 1)
	assert.Equal(t, "back", findings[0].RuleID)
	assert.Contains(t, findings[0].String(), `shadowed by rule "pain"`)
}

func TestLint_Malformed(t *testing.T) {
	rules := []domain.ClassifierRule{
		{ID: "a", Keywords: []string{"Heart"}, Specialization: "dentistry", Message: ""},
		{ID: "a", Keywords: []string{" "}, Specialization: domain.General, Message: "x"},
		{Keywords: []string{"skin"}, Specialization: domain.Dermatology, Message: "y"},
	}

	var messages []string
	for _, f := range classifier.Lint(rules) {
		messages = append(messages, f.String())
	}
	assert.Contains(t, messages, `rule "a": unknown specialization "dentistry"`)
	assert.Contains(t, messages, `rule "a": empty message`)
	assert.Contains(t, messages, `rule "a": keyword "Heart" is not normalized (want "heart")`)
	assert.Contains(t, messages, `rule "a": duplicate id`)
	assert.Contains(t, messages, `rule "a": empty keyword`)
	assert.Contains(t, messages, `rule "a": no keywords`)
	assert.Contains(t, messages, `rule "#3": missing id`)
}
