package runner

import (
	"context"

	"github.com/aretw0/triage/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents one assistant turn.
	Output(ctx context.Context, turn domain.ConversationTurn) error

	// Input reads the next user message. It returns io.EOF when the
	// conversation is over.
	Input(ctx context.Context) (string, error)
}

// ContentRenderer transforms markdown before it is written (e.g. to ANSI).
type ContentRenderer func(string) (string, error)
