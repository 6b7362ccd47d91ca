package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/presentation/tui"
	"github.com/aretw0/triage/pkg/directory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/aretw0/triage/pkg/reference"
)

// Chat commands recognized by the runner.
const (
	CommandTriage  = "/triage"
	CommandCancel  = "/cancel"
	CommandDoctors = "/doctors"
	CommandHistory = "/history"
	CommandHelp    = "/help"
)

// Conversation is the per-session surface the runner drives.
// *session.Manager implements it.
type Conversation interface {
	Start(ctx context.Context, sessionID string) (domain.Step, error)
	Answer(ctx context.Context, sessionID, choice string) (domain.Step, error)
	Cancel(ctx context.Context, sessionID string) error
	Current(ctx context.Context, sessionID string) (*domain.State, domain.Step, error)
	Classify(ctx context.Context, sessionID, text string) (domain.Recommendation, error)
}

// Runner handles one interactive conversation: guided triage when asked,
// free-text classification otherwise.
type Runner struct {
	conv       Conversation
	handler    IOHandler
	logger     *slog.Logger
	sessionID  string
	guided     bool
	greeting   string
	directory  ports.DoctorDirectory
	fallback   []domain.Doctor
	transcript *Transcript

	last *domain.Recommendation
}

// NewRunner creates a runner over conv. Without options it talks over
// stdin/stdout with a text handler.
func NewRunner(conv Conversation, opts ...Option) *Runner {
	r := &Runner{
		conv:       conv,
		logger:     logging.NewNop(),
		sessionID:  "cli",
		greeting:   reference.Greeting,
		transcript: NewTranscript(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.handler == nil {
		r.handler = NewTextHandler(nil, nil)
	}
	return r
}

// Transcript returns the in-memory record of this conversation.
func (r *Runner) Transcript() *Transcript {
	return r.transcript
}

// Run drives the conversation until the user quits, input ends or ctx is
// cancelled. End of input is not an error.
func (r *Runner) Run(ctx context.Context) error {
	if r.guided {
		if err := r.startTriage(ctx); err != nil {
			return err
		}
	} else if err := r.say(ctx, domain.ConversationTurn{Text: r.greeting}); err != nil {
		return err
	}

	for {
		text, err := r.handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("input error: %w", err)
		}
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			return nil
		}

		r.transcript.Append(domain.ConversationTurn{Role: domain.RoleUser, Text: text})
		if err := r.handle(ctx, text); err != nil {
			return err
		}
	}
}

func (r *Runner) handle(ctx context.Context, text string) error {
	switch strings.ToLower(text) {
	case CommandTriage:
		return r.startTriage(ctx)
	case CommandCancel:
		if err := r.conv.Cancel(ctx, r.sessionID); err != nil {
			return err
		}
		return r.say(ctx, domain.ConversationTurn{Text: "Guided triage cancelled."})
	case CommandDoctors:
		return r.showDoctors(ctx)
	case CommandHistory:
		return r.say(ctx, domain.ConversationTurn{Text: r.historyText()})
	case CommandHelp:
		return r.say(ctx, domain.ConversationTurn{Text: helpText})
	}

	state, step, err := r.conv.Current(ctx, r.sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	if state.Active() {
		if choice, ok := resolveChoice(step.Choices, text); ok {
			return r.answer(ctx, choice)
		}
	}

	// Typing anything else leaves the guided flow.
	rec, err := r.conv.Classify(ctx, r.sessionID, text)
	if err != nil {
		return err
	}
	r.logger.Debug("classified", "session_id", r.sessionID, "specialization", rec.Specialization)
	return r.recommend(ctx, rec)
}

func (r *Runner) startTriage(ctx context.Context) error {
	step, err := r.conv.Start(ctx, r.sessionID)
	if err != nil {
		return fmt.Errorf("start triage: %w", err)
	}
	return r.step(ctx, step)
}

func (r *Runner) answer(ctx context.Context, choice string) error {
	step, err := r.conv.Answer(ctx, r.sessionID, choice)
	if errors.Is(err, domain.ErrInvalidChoice) {
		return r.say(ctx, domain.ConversationTurn{Text: err.Error()})
	}
	if err != nil {
		return err
	}
	return r.step(ctx, step)
}

func (r *Runner) step(ctx context.Context, step domain.Step) error {
	if step.Kind == domain.StepQuestion {
		return r.say(ctx, domain.ConversationTurn{Text: step.Prompt, Options: step.Choices})
	}
	if step.Recommendation != nil {
		return r.recommend(ctx, *step.Recommendation)
	}
	return r.say(ctx, domain.ConversationTurn{Text: step.Prompt})
}

func (r *Runner) recommend(ctx context.Context, rec domain.Recommendation) error {
	turn := domain.ConversationTurn{Text: rec.Message}
	if rec.HasSpecialization() {
		turn.Recommendation = &rec
		r.last = &rec
	}
	if err := r.say(ctx, turn); err != nil {
		return err
	}
	if rec.HasSpecialization() && (r.directory != nil || len(r.fallback) > 0) {
		return r.showDoctors(ctx)
	}
	return nil
}

func (r *Runner) showDoctors(ctx context.Context) error {
	rec := domain.NoRecommendation("")
	if r.last != nil {
		rec = *r.last
	}
	doctors, err := directory.Match(ctx, r.directory, rec, directory.Options{
		Fallback: r.fallback,
		Limit:    3,
		Logger:   r.logger,
	})
	if err != nil {
		r.logger.Warn("doctor lookup failed", "error", err)
		return r.say(ctx, domain.ConversationTurn{Text: "Sorry, I couldn't load the doctor list right now."})
	}
	return r.say(ctx, domain.ConversationTurn{Text: tui.DoctorsMarkdown(doctors)})
}

func (r *Runner) say(ctx context.Context, turn domain.ConversationTurn) error {
	turn.Role = domain.RoleAssistant
	turn = r.transcript.Append(turn)
	if err := r.handler.Output(ctx, turn); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

func (r *Runner) historyText() string {
	var sb strings.Builder
	for _, t := range r.transcript.Turns() {
		fmt.Fprintf(&sb, "- **%s:** %s\n", t.Role, firstLine(t.Text))
	}
	return sb.String()
}

// resolveChoice accepts an exact label or its 1-based position.
func resolveChoice(choices []string, text string) (string, bool) {
	for _, c := range choices {
		if c == text {
			return c, true
		}
	}
	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(choices) {
		return choices[n-1], true
	}
	return "", false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

const helpText = `Describe your symptoms, or use a command:

- ` + "`/triage`" + ` start the guided questions
- ` + "`/cancel`" + ` leave the guided questions
- ` + "`/doctors`" + ` list doctors for the last recommendation
- ` + "`/history`" + ` show this conversation
- ` + "`exit`" + ` quit`
