// Package reference ships the built-in triage tree, classifier rules and
// fallback doctor roster used when no external configuration is given.
package reference

import (
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/dsl"
)

const (
	// Greeting opens a free-text conversation.
	Greeting = "Hello! I'm Dr. AI, your personal health assistant. How are you feeling today? You can tell me your symptoms, and I'll guide you to the right specialist."

	// RecommendationMessage is shown when the tree ends in a specialization.
	RecommendationMessage = "I've found the best specialists for you based on our conversation."

	// CloseMessage is the neutral closing used by hosts after a guided session.
	CloseMessage = "I hope that was helpful! feel free to ask me anything else."

	// FallbackMessage is returned by the classifier when no rule matches.
	FallbackMessage = "I understand. Could you describe your symptoms in a bit more detail? For example: 'I have a headache' or 'My chest hurts'."
)

// Tree builds the reference decision tree. It is at most three answers deep.
func Tree() *domain.Tree {
	b := dsl.New().Start("start")

	b.Add("start").
		Question("I understand you're not sure about your concern. Let's find out together. Are you experiencing any physical pain right now?").
		Go("Yes", "pain_location").
		Go("No", "general_wellness")

	b.Add("pain_location").
		Question("Is the pain located in your chest or head area?").
		Go("Yes", "chest_head_urgent").
		Go("No", "body_pain")

	b.Add("chest_head_urgent").
		Question("Chest or severe head pain should be checked by a specialist. Would you like to see our Cardiologists or Neurologists?").
		Recommend("Cardiology", domain.Cardiology, RecommendationMessage).
		Recommend("Neurology", domain.Neurology, RecommendationMessage).
		Recommend("General GP", domain.General, RecommendationMessage)

	b.Add("general_wellness").
		Question("Are you feeling unusually tired or having trouble sleeping?").
		Go("Yes", "mental_health_ref").
		Go("No", "routine_check")

	b.Add("mental_health_ref").
		Question("Stress and fatigue are common. It might be helpful to talk to a mental health professional or a general practitioner. Would you like to see a specialist?").
		Recommend("Mental Health", domain.MentalHealth, RecommendationMessage).
		Recommend("General GP", domain.General, RecommendationMessage)

	b.Add("routine_check").
		Question("If you're not in pain and feeling okay, a routine check-up with a General Practitioner is the best way to stay healthy. Shall I show you our GPs?").
		Recommend("Yes, please", domain.General, RecommendationMessage).
		Go("Not now", "end")

	b.Add("body_pain").
		Question("For general body or muscle pain, we recommend a General Practitioner or a Physiotherapist. Would you like to see our doctors?").
		Recommend("Yes", domain.General, RecommendationMessage).
		Go("No", "end")

	b.Add("end").
		Terminal("No problem! Feel free to describe your symptoms anytime if you change your mind.")

	return b.MustBuild()
}

// Rules returns the reference classifier table in priority order.
func Rules() []domain.ClassifierRule {
	return []domain.ClassifierRule{
		{
			ID:             "neurological",
			Keywords:       []string{"headache", "dizzy"},
			Specialization: domain.Neurology,
			Message:        "It sounds like you might be experiencing neurological symptoms. I recommend seeing a Neurologist.",
		},
		{
			ID:             "cardiac",
			Keywords:       []string{"heart", "chest"},
			Specialization: domain.Cardiology,
			Message:        "Chest pain can be serious. I strongly recommend a Cardiologist.",
		},
		{
			ID:             "skin",
			Keywords:       []string{"skin", "rash"},
			Specialization: domain.Dermatology,
			Message:        "For skin issues, a Dermatologist is your best bet.",
		},
		{
			ID:             "abdominal",
			Keywords:       []string{"stomach", "pain"},
			Specialization: domain.General,
			Message:        "Abdominal pain is often treated by General Practitioners first.",
		},
		{
			ID:             "dental",
			Keywords:       []string{"tooth", "dental"},
			Specialization: domain.General,
			Message:        "We don't have dentists yet, but a General Practitioner can help with pain management.",
		},
	}
}

// Doctors is the fallback roster appended to directory results.
func Doctors() []domain.Doctor {
	return []domain.Doctor{
		{ID: "mock-1", FullName: "Dr. Sarah Mitchell", Email: "sarah.mitchell@example.com", Specialization: "Cardiology"},
		{ID: "mock-2", FullName: "Dr. James Wilson", Email: "james.wilson@example.com", Specialization: "Neurology"},
		{ID: "mock-3", FullName: "Dr. Emily Chen", Email: "emily.chen@example.com", Specialization: "General Practice"},
		{ID: "mock-4", FullName: "Dr. Michael Brown", Email: "michael.brown@example.com", Specialization: "Dermatology"},
		{ID: "mock-5", FullName: "Dr. Lisa Ray", Email: "lisa.ray@example.com", Specialization: "Pediatrics"},
		{ID: "mock-6", FullName: "Dr. Robert Fox", Email: "robert.fox@example.com", Specialization: "Mental Health"},
	}
}
