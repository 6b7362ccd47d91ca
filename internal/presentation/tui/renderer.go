package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/triage/pkg/domain"
)

// RenderFunc turns markdown into terminal output.
type RenderFunc func(string) (string, error)

// NewRenderer returns a function that renders markdown using glamour.
// It falls back to plain text when the terminal renderer cannot be built.
func NewRenderer() RenderFunc {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return PlainRenderer
	}
	return r.Render
}

// PlainRenderer returns markdown unchanged.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}

// StepMarkdown formats a triage step with numbered options.
func StepMarkdown(step domain.Step) string {
	var sb strings.Builder
	sb.WriteString(step.Prompt)
	sb.WriteString("\n")
	if len(step.Choices) > 0 {
		sb.WriteString("\n")
		for i, c := range step.Choices {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, c)
		}
	}
	if step.Recommendation != nil && step.Recommendation.HasSpecialization() {
		fmt.Fprintf(&sb, "\n**Specialization:** %s\n", step.Recommendation.Specialization.DisplayName())
	}
	return sb.String()
}

// RecommendationMarkdown formats a classifier result.
func RecommendationMarkdown(rec domain.Recommendation) string {
	if !rec.HasSpecialization() {
		return rec.Message + "\n"
	}
	return fmt.Sprintf("%s\n\n**Specialization:** %s\n", rec.Message, rec.Specialization.DisplayName())
}

// DoctorsMarkdown formats a doctor listing. Recommended doctors are marked.
func DoctorsMarkdown(doctors []domain.Doctor) string {
	if len(doctors) == 0 {
		return "_No doctors available._\n"
	}
	var sb strings.Builder
	sb.WriteString("| Doctor | Specialization | Email |\n|---|---|---|\n")
	for _, d := range doctors {
		name := d.FullName
		if d.Recommended {
			name = "⭐ " + name
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", name, d.Specialization, d.Email)
	}
	return sb.String()
}
