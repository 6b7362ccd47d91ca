// Package lambda serves the triage API from AWS Lambda behind an API Gateway
// HTTP API (payload format 2.0).
//
// Routes mirror pkg/adapters/http:
//
//	POST   /classify
//	GET    /doctors?specialization=&concern_id=&condition_id=
//	POST   /sessions
//	GET    /sessions/{id}
//	DELETE /sessions/{id}
//	POST   /sessions/{id}/answer
//	POST   /sessions/{id}/cancel
//
// Lambda instances do not share memory, so guided sessions need a shared
// store (see pkg/adapters/redis).
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/aretw0/triage/internal/logging"
	httpadapter "github.com/aretw0/triage/pkg/adapters/http"
	"github.com/aretw0/triage/pkg/directory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/aretw0/triage/pkg/runner"
	"github.com/aretw0/triage/pkg/session"
)

// Handler dispatches API Gateway requests to a session manager.
type Handler struct {
	sessions  httpadapter.Sessions
	directory ports.DoctorDirectory
	fallback  []domain.Doctor
	sanitizer runner.Sanitizer
	logger    *slog.Logger
}

// Option configures the Handler.
type Option func(*Handler)

// WithDirectory sets the doctor directory used by /doctors and /classify.
func WithDirectory(dir ports.DoctorDirectory) Option {
	return func(h *Handler) { h.directory = dir }
}

// WithFallbackDoctors appends a static roster to doctor listings.
func WithFallbackDoctors(doctors []domain.Doctor) Option {
	return func(h *Handler) { h.fallback = doctors }
}

// WithMaxInputSize limits free text and choice labels.
func WithMaxInputSize(n int) Option {
	return func(h *Handler) { h.sanitizer.MaxSize = n }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// NewHandler creates a Handler.
func NewHandler(sessions httpadapter.Sessions, opts ...Option) *Handler {
	h := &Handler{sessions: sessions, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle is the Lambda entry point.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := req.RequestContext.HTTP.Method
	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")

	h.logger.Debug("lambda request", "method", method, "path", path)

	switch {
	case len(parts) == 1 && parts[0] == "classify" && method == http.MethodPost:
		return h.classify(ctx, req)
	case len(parts) == 1 && parts[0] == "doctors" && method == http.MethodGet:
		return h.doctors(ctx, req.QueryStringParameters)
	case len(parts) == 1 && parts[0] == "sessions" && method == http.MethodPost:
		return h.start(ctx, req)
	case len(parts) == 2 && parts[0] == "sessions":
		switch method {
		case http.MethodGet:
			return h.get(ctx, parts[1])
		case http.MethodDelete:
			if err := h.sessions.Delete(ctx, parts[1]); err != nil {
				return h.errorResp(err), nil
			}
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNoContent}, nil
		}
	case len(parts) == 3 && parts[0] == "sessions" && method == http.MethodPost:
		switch parts[2] {
		case "answer":
			return h.answer(ctx, parts[1], req)
		case "cancel":
			if err := h.sessions.Cancel(ctx, parts[1]); err != nil {
				return h.errorResp(err), nil
			}
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNoContent}, nil
		}
	}
	return jsonResp(http.StatusNotFound, httpadapter.ErrorResponse{Error: fmt.Sprintf("no route for %s %s", method, path)}), nil
}

func (h *Handler) classify(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	var in httpadapter.ClassifyRequest
	if resp, ok := decode(req, &in); !ok {
		return resp, nil
	}
	text, err := h.sanitizer.Sanitize(in.Text)
	if err != nil {
		return h.errorResp(err), nil
	}
	rec, err := h.sessions.Classify(ctx, in.SessionID, text)
	if err != nil {
		return h.errorResp(err), nil
	}

	out := httpadapter.ClassifyResponse{Recommendation: rec}
	if in.IncludeDoctors {
		out.Doctors, err = directory.Match(ctx, h.directory, rec, h.matchOptions())
		if err != nil {
			return h.errorResp(err), nil
		}
	}
	return jsonResp(http.StatusOK, out), nil
}

func (h *Handler) doctors(ctx context.Context, params map[string]string) (events.APIGatewayV2HTTPResponse, error) {
	q := domain.DoctorQuery{
		ConcernID:   params["concern_id"],
		ConditionID: params["condition_id"],
	}
	if raw := params["specialization"]; raw != "" {
		tag, err := domain.ParseSpecialization(raw)
		if err != nil {
			return h.errorResp(err), nil
		}
		q.Specialization = tag
	}

	doctors, err := directory.MatchQuery(ctx, h.directory, q, h.matchOptions())
	if err != nil {
		return h.errorResp(err), nil
	}
	if doctors == nil {
		doctors = []domain.Doctor{}
	}
	return jsonResp(http.StatusOK, httpadapter.DoctorsResponse{Doctors: doctors}), nil
}

func (h *Handler) matchOptions() directory.Options {
	return directory.Options{Fallback: h.fallback, Limit: 3, Logger: h.logger}
}

func (h *Handler) start(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	var in httpadapter.StartRequest
	if req.Body != "" {
		if resp, ok := decode(req, &in); !ok {
			return resp, nil
		}
	}
	id := strings.TrimSpace(in.SessionID)
	if id == "" {
		id = session.NewID()
	}
	step, err := h.sessions.Start(ctx, id)
	if err != nil {
		return h.errorResp(err), nil
	}
	return jsonResp(http.StatusCreated, httpadapter.StepResponse{SessionID: id, Step: step}), nil
}

func (h *Handler) get(ctx context.Context, id string) (events.APIGatewayV2HTTPResponse, error) {
	state, step, err := h.sessions.Current(ctx, id)
	if err != nil {
		return h.errorResp(err), nil
	}
	out := httpadapter.SessionResponse{SessionID: id, State: state}
	if step.Kind != "" {
		out.Step = &step
	}
	return jsonResp(http.StatusOK, out), nil
}

func (h *Handler) answer(ctx context.Context, id string, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	var in httpadapter.AnswerRequest
	if resp, ok := decode(req, &in); !ok {
		return resp, nil
	}
	if in.Choice == "" {
		return jsonResp(http.StatusBadRequest, httpadapter.ErrorResponse{Error: "choice is required"}), nil
	}
	choice, err := h.sanitizer.Sanitize(in.Choice)
	if err != nil {
		return h.errorResp(err), nil
	}
	step, err := h.sessions.Answer(ctx, id, choice)
	if err != nil {
		return h.errorResp(err), nil
	}
	return jsonResp(http.StatusOK, httpadapter.StepResponse{SessionID: id, Step: step}), nil
}

func (h *Handler) errorResp(err error) events.APIGatewayV2HTTPResponse {
	status := httpadapter.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	return jsonResp(status, httpadapter.NewErrorResponse(err))
}

func decode(req events.APIGatewayV2HTTPRequest, dest any) (events.APIGatewayV2HTTPResponse, bool) {
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, httpadapter.ErrorResponse{Error: "invalid body: " + err.Error()}), false
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return jsonResp(http.StatusBadRequest, httpadapter.ErrorResponse{Error: "invalid json: " + err.Error()}), false
	}
	return events.APIGatewayV2HTTPResponse{}, true
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
