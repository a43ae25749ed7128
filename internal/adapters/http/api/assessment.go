package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/cardiocare/internal/app"
	"github.com/okian/cardiocare/internal/domain/scoring"
)

// AssessmentDependencies defines the interface for questionnaire operations.
type AssessmentDependencies interface {
	Questions() scoring.Bank
	Assessment(ctx context.Context, id string) (service.AssessmentView, error)
	AnswerQuestion(ctx context.Context, id string, choice int) (service.AssessmentView, error)
	ResetAssessment(ctx context.Context, id string) (service.AssessmentView, error)
}

type answerRequest struct {
	Choice *int `json:"choice"`
}

type questionsResponse struct {
	Questions scoring.Bank `json:"questions"`
	MaxScore  int          `json:"max_score"`
}

// AssessmentHandler handles questionnaire requests.
type AssessmentHandler struct {
	deps AssessmentDependencies
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(deps AssessmentDependencies) *AssessmentHandler {
	return &AssessmentHandler{deps: deps}
}

// HandleQuestions handles GET /questions.
func (h *AssessmentHandler) HandleQuestions(w http.ResponseWriter, _ *http.Request) {
	bank := h.deps.Questions()
	writeJSON(w, http.StatusOK, questionsResponse{Questions: bank, MaxScore: bank.MaxScore()})
}

// HandleGet handles GET /sessions/{id}/assessment.
func (h *AssessmentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Assessment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleAnswer handles POST /sessions/{id}/assessment/answers.
func (h *AssessmentHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.answer"
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Choice == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing choice")))
		return
	}
	v, err := h.deps.AnswerQuestion(r.Context(), r.PathValue("id"), *req.Choice)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleReset handles POST /sessions/{id}/assessment/reset.
func (h *AssessmentHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.ResetAssessment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
