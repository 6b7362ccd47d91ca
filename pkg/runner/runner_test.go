package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/triage/internal/classifier"
	"github.com/aretw0/triage/internal/runtime"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/reference"
	"github.com/aretw0/triage/pkg/runner"
	"github.com/aretw0/triage/pkg/session"
)

func newConversation(t *testing.T) *session.Manager {
	t.Helper()
	engine, err := runtime.NewEngine(reference.Tree())
	require.NoError(t, err)
	return session.NewManager(engine, classifier.New(reference.Rules()), memory.NewStore())
}

func runScript(t *testing.T, lines []string, opts ...runner.Option) ([]domain.ConversationTurn, *runner.Runner) {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	out := &bytes.Buffer{}

	opts = append([]runner.Option{runner.WithInputHandler(runner.NewJSONHandler(in, out))}, opts...)
	r := runner.NewRunner(newConversation(t), opts...)
	require.NoError(t, r.Run(context.Background()))

	var turns []domain.ConversationTurn
	dec := json.NewDecoder(out)
	for {
		var turn domain.ConversationTurn
		if err := dec.Decode(&turn); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
		turns = append(turns, turn)
	}
	return turns, r
}

func TestRunner_GuidedTriageByNumberAndLabel(t *testing.T) {
	turns, r := runScript(t,
		[]string{"/triage", "1", "Yes", "Cardiology"},
		runner.WithFallbackDoctors(reference.Doctors()),
	)

	require.Len(t, turns, 6)
	assert.Equal(t, reference.Greeting, turns[0].Text)
	assert.Equal(t, []string{"Yes", "No"}, turns[1].Options)
	assert.Contains(t, turns[2].Text, "chest or head area")
	assert.Equal(t, []string{"Cardiology", "Neurology", "General GP"}, turns[3].Options)

	require.NotNil(t, turns[4].Recommendation)
	assert.Equal(t, domain.Cardiology, turns[4].Recommendation.Specialization)
	assert.Equal(t, reference.RecommendationMessage, turns[4].Text)

	assert.Contains(t, turns[5].Text, "Dr. Sarah Mitchell")
	assert.Equal(t, 10, r.Transcript().Len(), "four user turns and six assistant turns")
}

func TestRunner_FreeTextLeavesGuidedFlow(t *testing.T) {
	turns, _ := runScript(t, []string{"I have a headache", "Yes"}, runner.WithGuided(true))

	require.Len(t, turns, 3)
	assert.Equal(t, []string{"Yes", "No"}, turns[0].Options, "guided mode opens with the first question")

	require.NotNil(t, turns[1].Recommendation)
	assert.Equal(t, domain.Neurology, turns[1].Recommendation.Specialization)

	// The guided session was cancelled, so "Yes" is classified as free text.
	assert.Nil(t, turns[2].Recommendation)
	assert.Equal(t, reference.FallbackMessage, turns[2].Text)
}

func TestRunner_NotNowCloses(t *testing.T) {
	turns, _ := runScript(t, []string{"No", "No", "Not now"}, runner.WithGuided(true))

	last := turns[len(turns)-1]
	assert.Nil(t, last.Recommendation)
	assert.Empty(t, last.Options)
	assert.NotEmpty(t, last.Text)
}

func TestRunner_CommandsAndExit(t *testing.T) {
	turns, r := runScript(t, []string{"/triage", "/cancel", "/history", "exit", "never read"})

	require.Len(t, turns, 4)
	assert.Equal(t, "Guided triage cancelled.", turns[2].Text)
	assert.Contains(t, turns[3].Text, "**user:** /triage")
	assert.Equal(t, 7, r.Transcript().Len())
}

func TestRunner_DoctorsWithoutRecommendation(t *testing.T) {
	turns, _ := runScript(t, []string{"/doctors"}, runner.WithFallbackDoctors(reference.Doctors()))

	require.Len(t, turns, 2)
	assert.Contains(t, turns[1].Text, "Dr. Emily Chen")
	assert.NotContains(t, turns[1].Text, "Dr. Robert Fox", "listing is capped without a recommendation")
}

func TestRunner_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()
	r := runner.NewRunner(newConversation(t),
		runner.WithInputHandler(runner.NewTextHandler(pr, io.Discard)))

	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
}
