package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/triage/internal/classifier"
	"github.com/aretw0/triage/pkg/adapters/file"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports/tests"
	"github.com/aretw0/triage/pkg/reference"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
start: start
messages:
  recommendation: I've found the best specialists for you.
  close: Take care!
nodes:
  - id: start
    prompt: Are you in pain?
    choices:
      - label: "Yes"
        next: skin
      - label: "No"
        close: true
  - id: skin
    prompt: Is it a skin problem?
    choices:
      - label: "Yes"
        recommend: dermatology
      - label: "No"
        recommend:
          specialization: general
          message: A GP can help.
rules:
  - id: skin
    keywords: [skin, rash]
    specialization: dermatology
    message: For skin issues, a Dermatologist is your best bet.
`

func writeSample(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	doc, err := file.Load(writeSample(t, "triage.yaml", sample))
	require.NoError(t, err)

	loader, err := file.NewLoader(doc)
	require.NoError(t, err)

	tests.TreeLoaderContractTest(t, loader, map[string]domain.Node{
		"start": {ID: "start", Prompt: "Are you in pain?", Choices: []domain.Choice{
			{Label: "Yes", Transition: domain.Next("skin")},
			{Label: "No", Transition: domain.Close("Take care!")},
		}},
		"skin": {ID: "skin", Prompt: "Is it a skin problem?", Choices: []domain.Choice{
			{Label: "Yes", Transition: domain.Terminal(domain.Recommend(domain.Dermatology, "I've found the best specialists for you."))},
			{Label: "No", Transition: domain.Terminal(domain.Recommend(domain.General, "A GP can help."))},
		}},
	})

	tests.RuleLoaderContractTest(t, doc, []domain.ClassifierRule{{
		ID:             "skin",
		Keywords:       []string{"skin", "rash"},
		Specialization: domain.Dermatology,
		Message:        "For skin issues, a Dermatologist is your best bet.",
	}})
}

func TestLoad_JSON(t *testing.T) {
	doc, err := file.Load(writeSample(t, "triage.json", `{
  "nodes": [
    {"id": "start", "prompt": "Head?", "choices": [
      {"label": "Yes", "recommend": {"specialization": "neurology", "message": "neuro"}},
      {"label": "No", "close": "bye"}
    ]}
  ]
}`))
	require.NoError(t, err)

	tree, err := doc.Tree()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStartNode, tree.Start)

	n, err := tree.Node("start")
	require.NoError(t, err)
	tr, _ := n.Transition("Yes")
	assert.Equal(t, domain.Neurology, tr.Recommendation().Specialization)

	_, err = doc.LoadRules()
	assert.Error(t, err, "rules are mandatory when loading from the document")
}

func TestLoad_Errors(t *testing.T) {
	_, err := file.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	doc, err := file.Parse([]byte("nodes: []"), ".yaml")
	require.NoError(t, err)
	_, err = doc.Tree()
	assert.Error(t, err)

	_, err = file.Parse([]byte("{"), ".json")
	assert.Error(t, err)
}

func TestExport_RoundTrip(t *testing.T) {
	tree := reference.Tree()
	rules := reference.Rules()
	doc := file.Export(tree, rules, file.Messages{Fallback: classifier.DefaultFallback})

	for _, ext := range []string{".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			data, err := doc.Marshal(ext)
			require.NoError(t, err)

			back, err := file.Parse(data, ext)
			require.NoError(t, err)

			got, err := back.Tree()
			require.NoError(t, err)
			assert.Equal(t, tree.Start, got.Start)
			if d := cmp.Diff(tree.Nodes(), got.Nodes(), cmp.AllowUnexported(domain.Transition{})); d != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", d)
			}

			gotRules, err := back.LoadRules()
			require.NoError(t, err)
			assert.Equal(t, rules, gotRules)
			assert.Equal(t, classifier.DefaultFallback, back.Messages.Fallback)
		})
	}
}
