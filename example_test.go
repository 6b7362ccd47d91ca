package triage_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/domain"
)

// ExampleNew_memory demonstrates how to use the Engine with an in-memory tree definition.
// This is useful for testing, embedded scenarios, or when you don't want to rely on the file system.
func ExampleNew_memory() {
	loader, err := memory.NewFromNodes(
		domain.Node{
			ID:     "start",
			Prompt: "Does it hurt when you breathe?",
			Choices: []domain.Choice{
				{Label: "Yes", Transition: domain.Terminal(domain.Recommend(domain.Cardiology, "Please see a cardiologist."))},
				{Label: "No", Transition: domain.Next("done")},
			},
		},
		domain.Node{
			ID:     "done",
			Prompt: "Glad to hear it.",
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	// No source path needed ("") because we are providing a loader.
	eng, err := triage.New("", triage.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	w := eng.NewWalker("example")
	step, err := w.Start(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(step.Prompt, step.Choices)

	step, err = w.Answer(ctx, "Yes")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(step.Kind, step.Recommendation.Specialization)
	fmt.Println("active:", w.Active())

	// Output:
	// Does it hurt when you breathe? [Yes No]
	// recommendation cardiology
	// active: false
}

// ExampleEngine_Classify shows the free-text classifier over the built-in rules.
func ExampleEngine_Classify() {
	eng, err := triage.New("")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for _, text := range []string{"I have a headache", "my chest hurts", "hello"} {
		rec := eng.Classify(ctx, text)
		fmt.Printf("%q -> %q\n", text, rec.Specialization)
	}

	// Output:
	// "I have a headache" -> "neurology"
	// "my chest hurts" -> "cardiology"
	// "hello" -> ""
}
