/*
Package triage is a symptom triage engine: it walks a short decision tree of
yes/no style questions, or classifies a free-text description of symptoms, and
ends with a recommendation of which kind of specialist to see.

It never diagnoses. A Recommendation is an optional specialization tag
(cardiology, neurology, ...) plus a message for the user; the host decides
how to present it and which doctors to list for it (see pkg/directory).

# Concept

The tree is data: every node has a prompt and an ordered list of choices, and
every choice leads to another node, to a terminal recommendation or to a
neutral close. Trees are validated when the Engine is built, so a dangling
target or a cycle is a startup error rather than a stuck conversation.

The classifier is a prioritized table of keyword rules. The first rule whose
keyword appears in the normalized text wins; when nothing matches the user is
asked to describe their symptoms in more detail.

# Usage

	eng, err := triage.New("") // built-in reference tree and rules
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	w := eng.NewWalker("conversation-1")

	step, _ := w.Start(ctx)
	fmt.Println(step.Prompt, step.Choices)

	step, err = w.Answer(ctx, "Yes")
	if errors.Is(err, domain.ErrInvalidChoice) {
		// re-ask; the walker did not move
	}

	rec := eng.Classify(ctx, "I have a headache")
	fmt.Println(rec.Specialization, rec.Message)

Hosts that serve many conversations keep a domain.State per session and call
Engine.Start, Engine.Answer and Engine.Cancel directly, or use pkg/session which
adds storage and per-session locking.
*/
package triage
