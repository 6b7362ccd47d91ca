package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists one method per operation in openapi.yaml.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
	StartSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request, id string)
	DeleteSession(w http.ResponseWriter, r *http.Request, id string)
	AnswerSession(w http.ResponseWriter, r *http.Request, id string)
	CancelSession(w http.ResponseWriter, r *http.Request, id string)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, id string, params SubscribeEventsParams)
	Classify(w http.ResponseWriter, r *http.Request)
	ListDoctors(w http.ResponseWriter, r *http.Request, params ListDoctorsParams)
	GetTree(w http.ResponseWriter, r *http.Request)
	GetTreeMermaid(w http.ResponseWriter, r *http.Request, params GetTreeMermaidParams)
}

// SubscribeEventsParams are the query parameters of GET /sessions/{id}/events.
type SubscribeEventsParams struct {
	Watch *string `form:"watch,omitempty" json:"watch,omitempty"`
}

// ListDoctorsParams are the query parameters of GET /doctors.
type ListDoctorsParams struct {
	Specialization *string `form:"specialization,omitempty" json:"specialization,omitempty"`
	ConcernID      *string `form:"concern_id,omitempty" json:"concern_id,omitempty"`
	ConditionID    *string `form:"condition_id,omitempty" json:"condition_id,omitempty"`
}

// GetTreeMermaidParams are the query parameters of GET /tree/mermaid.
type GetTreeMermaidParams struct {
	SessionID *string `form:"session_id,omitempty" json:"session_id,omitempty"`
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// serverInterfaceWrapper binds path and query parameters before calling the handler.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

func (siw *serverInterfaceWrapper) query(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *serverInterfaceWrapper) withID(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := siw.pathID(w, r); ok {
			fn(w, r, id)
		}
	}
}

func (siw *serverInterfaceWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathID(w, r)
	if !ok {
		return
	}
	var params SubscribeEventsParams
	if !siw.query(w, r, "watch", &params.Watch) {
		return
	}
	siw.handler.SubscribeEvents(w, r, id, params)
}

func (siw *serverInterfaceWrapper) ListDoctors(w http.ResponseWriter, r *http.Request) {
	var params ListDoctorsParams
	if !siw.query(w, r, "specialization", &params.Specialization) ||
		!siw.query(w, r, "concern_id", &params.ConcernID) ||
		!siw.query(w, r, "condition_id", &params.ConditionID) {
		return
	}
	siw.handler.ListDoctors(w, r, params)
}

func (siw *serverInterfaceWrapper) GetTreeMermaid(w http.ResponseWriter, r *http.Request) {
	var params GetTreeMermaidParams
	if !siw.query(w, r, "session_id", &params.SessionID) {
		return
	}
	siw.handler.GetTreeMermaid(w, r, params)
}

// HandlerFromMux registers every operation of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router, errorHandler func(w http.ResponseWriter, r *http.Request, err error)) http.Handler {
	siw := &serverInterfaceWrapper{handler: si, errorHandlerFunc: errorHandler}

	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	r.Post("/sessions", si.StartSession)
	r.Get("/sessions/{id}", siw.withID(si.GetSession))
	r.Delete("/sessions/{id}", siw.withID(si.DeleteSession))
	r.Post("/sessions/{id}/answer", siw.withID(si.AnswerSession))
	r.Post("/sessions/{id}/cancel", siw.withID(si.CancelSession))
	r.Get("/sessions/{id}/events", siw.SubscribeEvents)
	r.Post("/classify", si.Classify)
	r.Get("/doctors", siw.ListDoctors)
	r.Get("/tree", si.GetTree)
	r.Get("/tree/mermaid", siw.GetTreeMermaid)
	return r
}
