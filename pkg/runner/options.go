package runner

import (
	"log/slog"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSessionID sets the session the conversation runs under.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.sessionID = id
	}
}

// WithGuided starts the guided triage immediately instead of greeting.
func WithGuided(guided bool) Option {
	return func(r *Runner) {
		r.guided = guided
	}
}

// WithGreeting replaces the opening message of a free-text conversation.
func WithGreeting(greeting string) Option {
	return func(r *Runner) {
		r.greeting = greeting
	}
}

// WithDirectory lists doctors after every recommendation.
func WithDirectory(dir ports.DoctorDirectory) Option {
	return func(r *Runner) {
		r.directory = dir
	}
}

// WithFallbackDoctors appends a static roster to doctor listings.
func WithFallbackDoctors(doctors []domain.Doctor) Option {
	return func(r *Runner) {
		r.fallback = doctors
	}
}
