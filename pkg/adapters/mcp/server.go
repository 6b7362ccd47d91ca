// Package mcp exposes the triage walker and classifier as Model Context
// Protocol tools, so an assistant can run a guided triage or classify free
// text on behalf of a user.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/presentation/graph"
	"github.com/aretw0/triage/pkg/directory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/aretw0/triage/pkg/runner"
)

const (
	treeURI    = "triage://tree"
	mermaidURI = "triage://tree/mermaid"
)

// Sessions is the subset of *session.Manager the tools drive.
type Sessions interface {
	Start(ctx context.Context, sessionID string) (domain.Step, error)
	Answer(ctx context.Context, sessionID, choice string) (domain.Step, error)
	Cancel(ctx context.Context, sessionID string) error
	Classify(ctx context.Context, sessionID, text string) (domain.Recommendation, error)
}

// StepResult is returned by start_triage and answer_triage.
type StepResult struct {
	SessionID string      `json:"session_id" jsonschema_description:"The session the step belongs to"`
	Step      domain.Step `json:"step" jsonschema_description:"The question to ask or the outcome reached"`
}

// ClassifyResult is returned by classify_symptoms.
type ClassifyResult struct {
	Recommendation domain.Recommendation `json:"recommendation" jsonschema_description:"Specialization tag (optional) and message"`
	Doctors        []domain.Doctor       `json:"doctors,omitempty" jsonschema_description:"Matching doctors, recommended first"`
}

// DoctorsResult is returned by find_doctors.
type DoctorsResult struct {
	Doctors []domain.Doctor `json:"doctors" jsonschema_description:"Matching doctors, recommended first"`
}

// SessionArgs identify a guided session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// AnswerArgs pick a choice at the current node.
type AnswerArgs struct {
	SessionID string `json:"session_id"`
	Choice    string `json:"choice"`
}

// ClassifyArgs carry the free-text description of symptoms.
type ClassifyArgs struct {
	Text           string `json:"text"`
	SessionID      string `json:"session_id,omitempty"`
	IncludeDoctors bool   `json:"include_doctors,omitempty"`
}

// DoctorsArgs select doctors by specialization, concern or condition.
type DoctorsArgs struct {
	Specialization string `json:"specialization,omitempty"`
	ConcernID      string `json:"concern_id,omitempty"`
	ConditionID    string `json:"condition_id,omitempty"`
}

// Server wraps a session manager and exposes it as an MCP server.
type Server struct {
	sessions  Sessions
	tree      *domain.Tree
	directory ports.DoctorDirectory
	fallback  []domain.Doctor
	sanitizer runner.Sanitizer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithTree exposes the tree as the triage://tree resources.
func WithTree(tree *domain.Tree) Option {
	return func(s *Server) { s.tree = tree }
}

// WithDirectory sets the doctor directory used by find_doctors.
func WithDirectory(dir ports.DoctorDirectory) Option {
	return func(s *Server) { s.directory = dir }
}

// WithFallbackDoctors appends a static roster to doctor listings.
func WithFallbackDoctors(doctors []domain.Doctor) Option {
	return func(s *Server) { s.fallback = doctors }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("triage-mcp", strings.TrimSpace(triage.Version))
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_triage",
		mcp.WithDescription("Start (or restart) a guided triage session and return its first question."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Caller-chosen session identifier")),
		mcp.WithOutputSchema[StepResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("answer_triage",
		mcp.WithDescription("Answer the current question of a guided session with one of its choices."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("choice", mcp.Required(), mcp.Description("Exact label of the chosen option")),
		mcp.WithOutputSchema[StepResult](),
	), mcp.NewStructuredToolHandler(s.handleAnswer))

	s.mcpServer.AddTool(mcp.NewTool("cancel_triage",
		mcp.WithDescription("Abandon a guided session. Cancelling an unknown session is a no-op."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
	), s.handleCancel)

	s.mcpServer.AddTool(mcp.NewTool("classify_symptoms",
		mcp.WithDescription("Map a free-text symptom description to a specialist recommendation."),
		mcp.WithString("text", mcp.Required(), mcp.Description("What the user said")),
		mcp.WithString("session_id", mcp.Description("Guided session to cancel before classifying (optional)")),
		mcp.WithBoolean("include_doctors", mcp.Description("Also list matching doctors")),
		mcp.WithOutputSchema[ClassifyResult](),
	), mcp.NewStructuredToolHandler(s.handleClassify))

	s.mcpServer.AddTool(mcp.NewTool("find_doctors",
		mcp.WithDescription("List doctors for a specialization tag, concern id or condition id."),
		mcp.WithString("specialization", mcp.Description("Specialization tag, e.g. cardiology")),
		mcp.WithString("concern_id", mcp.Description("Concern identifier")),
		mcp.WithString("condition_id", mcp.Description("Condition identifier")),
		mcp.WithOutputSchema[DoctorsResult](),
	), mcp.NewStructuredToolHandler(s.handleFindDoctors))
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (StepResult, error) {
	id := strings.TrimSpace(args.SessionID)
	if id == "" {
		return StepResult{}, errors.New("session_id is required")
	}
	step, err := s.sessions.Start(ctx, id)
	if err != nil {
		return StepResult{}, fmt.Errorf("start failed: %w", err)
	}
	return StepResult{SessionID: id, Step: step}, nil
}

func (s *Server) handleAnswer(ctx context.Context, request mcp.CallToolRequest, args AnswerArgs) (StepResult, error) {
	choice, err := s.sanitizer.Sanitize(args.Choice)
	if err != nil {
		s.logger.Warn("MCP answer: input rejected", "error", err, "size", len(args.Choice))
		return StepResult{}, fmt.Errorf("input rejected: %w", err)
	}
	step, err := s.sessions.Answer(ctx, args.SessionID, choice)
	if err != nil {
		return StepResult{}, fmt.Errorf("answer failed: %w", err)
	}
	return StepResult{SessionID: args.SessionID, Step: step}, nil
}

func (s *Server) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Cancel(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cancel failed: %v", err)), nil
	}
	return mcp.NewToolResultText("cancelled"), nil
}

func (s *Server) handleClassify(ctx context.Context, request mcp.CallToolRequest, args ClassifyArgs) (ClassifyResult, error) {
	text, err := s.sanitizer.Sanitize(args.Text)
	if err != nil {
		s.logger.Warn("MCP classify: input rejected", "error", err, "size", len(args.Text))
		return ClassifyResult{}, fmt.Errorf("input rejected: %w", err)
	}
	rec, err := s.sessions.Classify(ctx, args.SessionID, text)
	if err != nil {
		return ClassifyResult{}, fmt.Errorf("classify failed: %w", err)
	}
	res := ClassifyResult{Recommendation: rec}
	if args.IncludeDoctors {
		res.Doctors, err = directory.Match(ctx, s.directory, rec, s.matchOptions())
		if err != nil {
			return ClassifyResult{}, err
		}
	}
	return res, nil
}

func (s *Server) handleFindDoctors(ctx context.Context, request mcp.CallToolRequest, args DoctorsArgs) (DoctorsResult, error) {
	q := domain.DoctorQuery{ConcernID: args.ConcernID, ConditionID: args.ConditionID}
	if args.Specialization != "" {
		tag, err := domain.ParseSpecialization(args.Specialization)
		if err != nil {
			return DoctorsResult{}, err
		}
		q.Specialization = tag
	}
	doctors, err := directory.MatchQuery(ctx, s.directory, q, s.matchOptions())
	if err != nil {
		return DoctorsResult{}, err
	}
	if doctors == nil {
		doctors = []domain.Doctor{}
	}
	return DoctorsResult{Doctors: doctors}, nil
}

func (s *Server) matchOptions() directory.Options {
	return directory.Options{Fallback: s.fallback, Limit: 3, Logger: s.logger}
}

func (s *Server) registerResources() {
	if s.tree == nil {
		return
	}

	// EXPOSE: triage://tree
	s.mcpServer.AddResource(mcp.NewResource(treeURI, "Triage Tree Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.treeJSON()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: treeURI, MIMEType: "application/json", Text: text},
		}, nil
	})

	// EXPOSE: triage://tree/mermaid
	s.mcpServer.AddResource(mcp.NewResource(mermaidURI, "Triage Tree Diagram",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: mermaidURI, MIMEType: "text/plain", Text: graph.GenerateMermaid(s.tree, nil)},
		}, nil
	})
}

func (s *Server) treeJSON() (string, error) {
	data, err := json.Marshal(s.tree.Nodes())
	if err != nil {
		return "", fmt.Errorf("failed to encode tree: %w", err)
	}
	return string(data), nil
}
