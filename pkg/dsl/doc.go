/*
Package dsl provides a Go DSL for programmatically constructing triage trees.

It allows developers to define question flows using a type-safe, fluent builder
instead of relying on external YAML or Markdown files. This is particularly
useful for the built-in reference tree, unit testing, and IDE autocompletion.

Example usage:

	b := dsl.New()

	b.Add("start").
		Question("Are you experiencing any physical pain right now?").
		Go("Yes", "pain_location").
		Close("No", "Glad to hear it!")

	b.Add("pain_location").
		Question("Is the pain located in your chest?").
		Recommend("Yes", domain.Cardiology, "Please see a cardiologist.").
		Go("No", "end")

	b.Add("end").
		Terminal("Feel free to describe your symptoms anytime.")

	tree, err := b.Build()
	// ... pass tree to triage.New(triage.WithTree(tree))
*/
package dsl
