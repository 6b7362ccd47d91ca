package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/triage/internal/presentation/tui"
	"github.com/aretw0/triage/pkg/runner"
	"github.com/aretw0/triage/pkg/session"
)

// ChatOptions configures an interactive conversation.
type ChatOptions struct {
	// JSON switches to JSON Lines IO for scripted clients.
	JSON bool
	// Guided starts the decision tree right away instead of waiting for free text.
	Guided bool
	// Interactive enables the banner and Markdown rendering for a terminal.
	Interactive bool
	SessionID   string
	In          io.Reader
	Out         io.Writer
}

// RunChat runs one conversation until the user exits or ctx is cancelled.
func (a *App) RunChat(ctx context.Context, opts ChatOptions) error {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = session.NewID()
	}

	var handler runner.IOHandler
	switch {
	case opts.JSON:
		handler = runner.NewJSONHandler(in, out)
	case opts.Interactive:
		tui.PrintBanner(out)
		fmt.Fprintln(out, tui.Dim("Describe your symptoms, type /triage for guided questions or /help. Ctrl+C to quit."))
		handler = runner.NewTextHandler(in, out,
			runner.WithTextHandlerRenderer(runner.ContentRenderer(tui.NewRenderer())),
			runner.WithMaxInputSize(a.Config.Input.MaxSize),
		)
	default:
		handler = runner.NewTextHandler(in, out,
			runner.WithTextHandlerRenderer(runner.ContentRenderer(tui.PlainRenderer)),
			runner.WithMaxInputSize(a.Config.Input.MaxSize),
		)
	}

	r := runner.NewRunner(a.Sessions,
		runner.WithInputHandler(handler),
		runner.WithLogger(a.Logger),
		runner.WithSessionID(sessionID),
		runner.WithGuided(opts.Guided),
		runner.WithDirectory(a.Directory),
		runner.WithFallbackDoctors(a.Fallback),
	)

	a.Logger.Info("chat started", "session_id", sessionID, "guided", opts.Guided)
	err := r.Run(ctx)
	if ctx.Err() != nil {
		err = nil
	}
	if cerr := a.Sessions.Delete(context.WithoutCancel(ctx), sessionID); cerr != nil {
		a.Logger.Warn("failed to discard chat session", "session_id", sessionID, "error", cerr)
	}
	a.Logger.Info("chat finished", "session_id", sessionID, "turns", r.Transcript().Len())
	return err
}
