/*
Package runner implements the interactive chat loop for the triage engines.

It bridges a Conversation (usually a *session.Manager) and the user through
pluggable IOHandlers. Typing free text classifies it; `/triage` starts the
guided questions, which accept an option label or its number. Any other text
typed during the guided flow leaves it and goes to the classifier.

# Key Components

  - Runner: the conversation loop.
  - IOHandler: decouples how turns are shown and input is read.
  - TextHandler: interactive terminal usage with markdown rendering.
  - JSONHandler: JSON Lines for scripted hosts.
  - Transcript: the turns of the current process, never persisted.

# Usage

	r := runner.NewRunner(manager,
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithFallbackDoctors(reference.Doctors()),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
