package domain

// StepKind classifies what a Step asks the host to render.
type StepKind string

const (
	StepQuestion       StepKind = "question"
	StepRecommendation StepKind = "recommendation"
	StepClose          StepKind = "close"
)

// Step is what start and answer return to the host.
type Step struct {
	Kind           StepKind        `json:"kind"`
	NodeID         string          `json:"node_id,omitempty"`
	Prompt         string          `json:"prompt"`
	Choices        []string        `json:"choices,omitempty"`
	Terminal       bool            `json:"terminal"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// QuestionStep renders a node as a question.
func QuestionStep(n Node) Step {
	return Step{
		Kind:    StepQuestion,
		NodeID:  n.ID,
		Prompt:  n.Prompt,
		Choices: n.Options(),
	}
}

// OutcomeStep renders the end of a session. A recommendation without a
// specialization becomes a close step.
func OutcomeStep(nodeID string, rec Recommendation) Step {
	kind := StepClose
	if rec.HasSpecialization() {
		kind = StepRecommendation
	}
	return Step{
		Kind:           kind,
		NodeID:         nodeID,
		Prompt:         rec.Message,
		Terminal:       true,
		Recommendation: &rec,
	}
}
