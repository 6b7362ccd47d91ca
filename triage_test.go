package triage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/testutils"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/reference"
)

func TestWalker_CardiologyScenario(t *testing.T) {
	eng, err := triage.New("")
	require.NoError(t, err)
	ctx := context.Background()
	w := eng.NewWalker("s1")

	step, err := w.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Yes", "No"}, step.Choices)

	_, err = w.Answer(ctx, "Yes")
	require.NoError(t, err)
	step, err = w.Answer(ctx, "Yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiology", "Neurology", "General GP"}, step.Choices)

	step, err = w.Answer(ctx, "Cardiology")
	require.NoError(t, err)
	assert.True(t, step.Terminal)
	assert.Equal(t, domain.Cardiology, step.Recommendation.Specialization)
	assert.Equal(t, reference.RecommendationMessage, step.Prompt)
	assert.False(t, w.Active())
}

func TestWalker_NotNowCloses(t *testing.T) {
	eng, err := triage.New("")
	require.NoError(t, err)
	ctx := context.Background()
	w := eng.NewWalker("s1")

	_, err = w.Start(ctx)
	require.NoError(t, err)
	for _, choice := range []string{"No", "No"} {
		_, err = w.Answer(ctx, choice)
		require.NoError(t, err)
	}
	step, err := w.Answer(ctx, "Not now")
	require.NoError(t, err)
	assert.Equal(t, domain.StepClose, step.Kind)
	assert.False(t, step.Recommendation.HasSpecialization())
	assert.Contains(t, step.Prompt, "No problem!")
}

func TestWalker_InvalidChoiceKeepsPosition(t *testing.T) {
	eng, err := triage.New("")
	require.NoError(t, err)
	ctx := context.Background()
	w := eng.NewWalker("s1")

	_, err = w.Answer(ctx, "Yes")
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)

	_, err = w.Start(ctx)
	require.NoError(t, err)
	_, err = w.Answer(ctx, "yes")
	assert.ErrorIs(t, err, domain.ErrInvalidChoice)
	assert.Equal(t, "start", w.State().CurrentNodeID)

	w.Cancel(ctx)
	assert.False(t, w.Active())
	w.Cancel(ctx)
	assert.Equal(t, domain.StatusIdle, w.State().Status)
}

func TestWalker_Isolation(t *testing.T) {
	eng, err := triage.New("")
	require.NoError(t, err)
	ctx := context.Background()

	a, b := eng.NewWalker("a"), eng.NewWalker("b")
	_, err = a.Start(ctx)
	require.NoError(t, err)
	_, err = b.Start(ctx)
	require.NoError(t, err)
	_, err = a.Answer(ctx, "Yes")
	require.NoError(t, err)

	assert.Equal(t, "pain_location", a.State().CurrentNodeID)
	assert.Equal(t, "start", b.State().CurrentNodeID)
}

func TestEngine_StatelessKeepsNoState(t *testing.T) {
	eng, err := triage.New("")
	require.NoError(t, err)
	ctx := context.Background()
	rt := eng.Stateless()

	state, step, err := rt.Start(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "start", step.NodeID)

	next, _, err := rt.Answer(ctx, state, "Yes")
	require.NoError(t, err)
	assert.Equal(t, "pain_location", next.CurrentNodeID)
	assert.Equal(t, "start", state.CurrentNodeID, "input state is not modified")

	again, _, err := rt.Answer(ctx, state, "No")
	require.NoError(t, err)
	assert.NotEqual(t, next.CurrentNodeID, again.CurrentNodeID)
}

func TestNew_RejectsInvalidTree(t *testing.T) {
	tree, err := domain.NewTree("start", domain.Node{
		ID:      "start",
		Prompt:  "?",
		Choices: []domain.Choice{{Label: "Yes", Transition: domain.Next("ghost")}},
	})
	require.NoError(t, err)

	_, err = triage.New("", triage.WithTree(tree))
	assert.ErrorIs(t, err, domain.ErrUnknownTransitionTarget)
}

func TestNew_Options(t *testing.T) {
	var classified int
	hooks := domain.LifecycleHooks{
		OnClassify: func(context.Context, *domain.ClassifyEvent) { classified++ },
	}
	eng, err := triage.New("",
		triage.WithRules([]domain.ClassifierRule{
			{ID: "eyes", Keywords: []string{"blurry"}, Specialization: domain.Ophthalmology, Message: "See an eye doctor."},
		}),
		triage.WithFallbackMessage("Tell me more."),
		triage.WithEntryNode("general_wellness"),
		triage.WithLifecycleHooks(hooks),
	)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, domain.Ophthalmology, eng.Classify(ctx, "Blurry vision").Specialization)
	assert.Equal(t, "Tell me more.", eng.Classify(ctx, "headache").Message)
	assert.Equal(t, 2, classified)

	_, step, err := eng.Start(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "general_wellness", step.NodeID)

	_, err = eng.Watch(ctx)
	assert.Error(t, err, "built-in tree cannot be watched")
}

func TestNew_FromDocument(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"triage.yaml": `start: start
messages:
  recommendation: Here are our specialists.
  fallback: Say more, please.
nodes:
  - id: start
    prompt: Any rash?
    choices:
      - label: "Yes"
        recommend: dermatology
      - label: "No"
        close: Take care.
rules:
  - id: skin
    keywords: [itch]
    specialization: dermatology
    message: Sounds like a skin issue.
`,
	})

	eng, err := triage.New(filepath.Join(dir, "triage.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "triage.yaml", eng.Name)
	ctx := context.Background()

	state, _, err := eng.Start(ctx, "s")
	require.NoError(t, err)
	_, step, err := eng.Answer(ctx, state, "Yes")
	require.NoError(t, err)
	assert.Equal(t, "Here are our specialists.", step.Prompt)

	assert.Equal(t, domain.Dermatology, eng.Classify(ctx, "my arm itches").Specialization)
	assert.Equal(t, "Say more, please.", eng.Classify(ctx, "chest").Message)
	require.Len(t, eng.Rules(), 1)
}

func TestNew_FromLoamRepository(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"start.md": `---
choices:
  - label: "Yes"
    next: head
---
Does anything hurt?`,
		"head.md": `---
choices:
  - label: Neurology
    recommend: neurology
---
Is it your head?`,
	})

	eng, err := triage.New(dir)
	require.NoError(t, err)
	assert.Len(t, eng.Inspect(), 2)
	assert.Equal(t, reference.Rules(), eng.Rules())

	ctx := context.Background()
	state, _, err := eng.Start(ctx, "s")
	require.NoError(t, err)
	state, _, err = eng.Answer(ctx, state, "Yes")
	require.NoError(t, err)
	_, step, err := eng.Answer(ctx, state, "Neurology")
	require.NoError(t, err)
	assert.Equal(t, reference.RecommendationMessage, step.Prompt)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, triage.Version)
}
