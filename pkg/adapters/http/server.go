// Package http exposes the triage session manager, classifier and doctor
// directory as a JSON API described by openapi.yaml.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/presentation/graph"
	"github.com/aretw0/triage/pkg/directory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/aretw0/triage/pkg/runner"
	"github.com/aretw0/triage/pkg/session"
)

// Sessions is the per-session surface the API drives.
// *session.Manager implements it.
type Sessions interface {
	Start(ctx context.Context, sessionID string) (domain.Step, error)
	Answer(ctx context.Context, sessionID, choice string) (domain.Step, error)
	Cancel(ctx context.Context, sessionID string) error
	Current(ctx context.Context, sessionID string) (*domain.State, domain.Step, error)
	Classify(ctx context.Context, sessionID, text string) (domain.Recommendation, error)
	Delete(ctx context.Context, sessionID string) error
}

// ChangeNotifier reports persisted state changes. When the Sessions value
// implements it, GET /sessions/{id}/events streams the reported diffs.
type ChangeNotifier interface {
	OnChange(fn session.ChangeFunc)
}

// Server implements ServerInterface.
type Server struct {
	sessions  Sessions
	tree      *domain.Tree
	directory ports.DoctorDirectory
	fallback  []domain.Doctor
	metrics   http.Handler
	sanitizer runner.Sanitizer
	logger    *slog.Logger
	streams   *StreamManager
}

var _ ServerInterface = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

// WithTree enables GET /tree and GET /tree/mermaid.
func WithTree(tree *domain.Tree) Option {
	return func(s *Server) { s.tree = tree }
}

// WithDirectory sets the doctor directory used by /doctors and /classify.
func WithDirectory(dir ports.DoctorDirectory) Option {
	return func(s *Server) { s.directory = dir }
}

// WithFallbackDoctors appends a static roster to doctor listings.
func WithFallbackDoctors(doctors []domain.Doctor) Option {
	return func(s *Server) { s.fallback = doctors }
}

// WithMetrics mounts a Prometheus handler at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMaxInputSize limits free text and choice labels.
func WithMaxInputSize(n int) Option {
	return func(s *Server) { s.sanitizer.MaxSize = n }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for sessions.
func NewHandler(sessions Sessions, opts ...Option) http.Handler {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	if n, ok := sessions.(ChangeNotifier); ok {
		n.OnChange(s.streams.Publish)
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return HandlerFromMux(s, r, func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, s.logger, err)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartRequest is the optional body of POST /sessions.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// AnswerRequest is the body of POST /sessions/{id}/answer.
type AnswerRequest struct {
	Choice string `json:"choice"`
}

// ClassifyRequest is the body of POST /classify.
type ClassifyRequest struct {
	Text           string `json:"text"`
	SessionID      string `json:"session_id,omitempty"`
	IncludeDoctors bool   `json:"include_doctors,omitempty"`
}

// StepResponse wraps a walker step.
type StepResponse struct {
	SessionID string      `json:"session_id"`
	Step      domain.Step `json:"step"`
}

// SessionResponse is the body of GET /sessions/{id}.
type SessionResponse struct {
	SessionID string        `json:"session_id"`
	State     *domain.State `json:"state"`
	Step      *domain.Step  `json:"step,omitempty"`
}

// ClassifyResponse is the body of POST /classify.
type ClassifyResponse struct {
	Recommendation domain.Recommendation `json:"recommendation"`
	Doctors        []domain.Doctor       `json:"doctors,omitempty"`
}

// DoctorsResponse is the body of GET /doctors.
type DoctorsResponse struct {
	Doctors []domain.Doctor `json:"doctors"`
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "triage-http",
		"version":     strings.TrimSpace(triage.Version),
		"api_version": apiVersion,
	})
}

func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if err := decodeBody(r, "/sessions", http.MethodPost, &body); err != nil {
		writeError(w, s.logger, err)
		return
	}
	id := strings.TrimSpace(body.SessionID)
	if id == "" {
		id = session.NewID()
	}

	step, err := s.sessions.Start(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, StepResponse{SessionID: id, Step: step})
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, id string) {
	state, step, err := s.sessions.Current(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	resp := SessionResponse{SessionID: id, State: state}
	if step.Kind != "" {
		resp.Step = &step
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) AnswerSession(w http.ResponseWriter, r *http.Request, id string) {
	var body AnswerRequest
	if err := decodeBody(r, "/sessions/{id}/answer", http.MethodPost, &body); err != nil {
		writeError(w, s.logger, err)
		return
	}
	choice, err := s.sanitizer.Sanitize(body.Choice)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	step, err := s.sessions.Answer(r.Context(), id, choice)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, StepResponse{SessionID: id, Step: step})
}

func (s *Server) CancelSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.sessions.Cancel(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var body ClassifyRequest
	if err := decodeBody(r, "/classify", http.MethodPost, &body); err != nil {
		writeError(w, s.logger, err)
		return
	}
	text, err := s.sanitizer.Sanitize(body.Text)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	rec, err := s.sessions.Classify(r.Context(), body.SessionID, text)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	resp := ClassifyResponse{Recommendation: rec}
	if body.IncludeDoctors {
		resp.Doctors, err = directory.Match(r.Context(), s.directory, rec, s.matchOptions())
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) ListDoctors(w http.ResponseWriter, r *http.Request, params ListDoctorsParams) {
	var q domain.DoctorQuery
	if params.Specialization != nil && *params.Specialization != "" {
		tag, err := domain.ParseSpecialization(*params.Specialization)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		q.Specialization = tag
	}
	if params.ConcernID != nil {
		q.ConcernID = *params.ConcernID
	}
	if params.ConditionID != nil {
		q.ConditionID = *params.ConditionID
	}

	doctors, err := directory.MatchQuery(r.Context(), s.directory, q, s.matchOptions())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if doctors == nil {
		doctors = []domain.Doctor{}
	}
	writeJSON(w, http.StatusOK, DoctorsResponse{Doctors: doctors})
}

func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	if s.tree == nil {
		writeJSON(w, http.StatusOK, []domain.Node{})
		return
	}
	writeJSON(w, http.StatusOK, s.tree.Nodes())
}

func (s *Server) GetTreeMermaid(w http.ResponseWriter, r *http.Request, params GetTreeMermaidParams) {
	if s.tree == nil {
		http.Error(w, "no tree configured", http.StatusNotFound)
		return
	}
	var overlay *graph.GraphOverlay
	if params.SessionID != nil && *params.SessionID != "" {
		state, _, err := s.sessions.Current(r.Context(), *params.SessionID)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		overlay = graph.OverlayFromState(state)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(s.tree, overlay)))
}

func (s *Server) matchOptions() directory.Options {
	return directory.Options{Fallback: s.fallback, Limit: 3, Logger: s.logger}
}
