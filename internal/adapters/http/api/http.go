// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/cardiocare/internal/app"
	"github.com/okian/cardiocare/internal/domain/intake"
	"github.com/okian/cardiocare/internal/domain/scoring"
	"github.com/okian/cardiocare/internal/domain/tracker"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	AssessmentDependencies
	IntakeDependencies
	ReadingDependencies
	MonitorDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	classifyHandler   *ClassifyHandler
	sessionHandler    *SessionHandler
	assessmentHandler *AssessmentHandler
	intakeHandler     *IntakeHandler
	readingHandler    *ReadingHandler
	monitorHandler    *MonitorHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		classifyHandler:   NewClassifyHandler(),
		sessionHandler:    NewSessionHandler(deps),
		assessmentHandler: NewAssessmentHandler(deps),
		intakeHandler:     NewIntakeHandler(deps),
		readingHandler:    NewReadingHandler(deps),
		monitorHandler:    NewMonitorHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /classify/bmi", MetricsMiddleware(s.classifyHandler.HandleBMI, "classify_bmi"))
	mux.HandleFunc("GET /classify/blood-pressure", MetricsMiddleware(s.classifyHandler.HandleBloodPressure, "classify_bp"))
	mux.HandleFunc("GET /classify/heart-rate", MetricsMiddleware(s.classifyHandler.HandleHeartRate, "classify_hr"))

	mux.HandleFunc("GET /questions", MetricsMiddleware(s.assessmentHandler.HandleQuestions, "questions"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionHandler.HandleCreate, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleGet, "sessions"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleDelete, "sessions"))

	mux.HandleFunc("GET /sessions/{id}/assessment", MetricsMiddleware(s.assessmentHandler.HandleGet, "assessment"))
	mux.HandleFunc("POST /sessions/{id}/assessment/answers", MetricsMiddleware(s.assessmentHandler.HandleAnswer, "assessment"))
	mux.HandleFunc("POST /sessions/{id}/assessment/reset", MetricsMiddleware(s.assessmentHandler.HandleReset, "assessment"))

	mux.HandleFunc("GET /sessions/{id}/intake", MetricsMiddleware(s.intakeHandler.HandleGet, "intake"))
	mux.HandleFunc("PATCH /sessions/{id}/intake", MetricsMiddleware(s.intakeHandler.HandlePatch, "intake"))
	mux.HandleFunc("POST /sessions/{id}/intake/{action}", MetricsMiddleware(s.intakeHandler.HandleAction, "intake"))

	mux.HandleFunc("GET /sessions/{id}/readings/{kind}", MetricsMiddleware(s.readingHandler.HandleList, "readings"))
	mux.HandleFunc("POST /sessions/{id}/readings", MetricsMiddleware(s.readingHandler.HandleAdd, "readings"))
	mux.HandleFunc("DELETE /sessions/{id}/readings", MetricsMiddleware(s.readingHandler.HandleClear, "readings"))

	mux.HandleFunc("GET /sessions/{id}/monitor", MetricsMiddleware(s.monitorHandler.HandleGet, "monitor"))
	mux.HandleFunc("POST /sessions/{id}/monitor/{action}", MetricsMiddleware(s.monitorHandler.HandleAction, "monitor"))
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// maxBodyBytes caps the size of a request body.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps core errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *intake.ValidationError
	switch {
	case errors.As(err, &verr):
		resp := errorResponse{Code: "validation_error", Message: verr.Error()}
		if verr.Field != "" {
			resp.Fields = []string{string(verr.Field)}
		}
		for _, f := range verr.Missing {
			resp.Fields = append(resp.Fields, string(f))
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, scoring.ErrInvalidChoice),
		errors.Is(err, tracker.ErrInvalidReading),
		errors.Is(err, tracker.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, intake.ErrSubmissionInFlight),
		errors.Is(err, intake.ErrNotFinalStep),
		errors.Is(err, intake.ErrSessionComplete),
		errors.Is(err, scoring.ErrAssessmentComplete):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrSessionLimit):
		writeError(w, http.StatusTooManyRequests, "session_limit", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
