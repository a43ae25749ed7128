package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	service "github.com/okian/cardiocare/internal/app"
	"github.com/okian/cardiocare/internal/domain/intake"
)

// IntakeDependencies defines the interface for intake form operations.
type IntakeDependencies interface {
	Intake(ctx context.Context, id string) (service.IntakeView, error)
	SetIntakeFields(ctx context.Context, id string, values map[intake.Field]string) (service.IntakeView, error)
	NextStep(ctx context.Context, id string) (service.IntakeView, error)
	PrevStep(ctx context.Context, id string) (service.IntakeView, error)
	SubmitIntake(ctx context.Context, id string) (service.IntakeView, error)
	ResetIntake(ctx context.Context, id string) (service.IntakeView, error)
}

// IntakeHandler handles intake form requests.
type IntakeHandler struct {
	deps IntakeDependencies
}

// NewIntakeHandler creates a new intake handler.
func NewIntakeHandler(deps IntakeDependencies) *IntakeHandler {
	return &IntakeHandler{deps: deps}
}

// HandleGet handles GET /sessions/{id}/intake.
func (h *IntakeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Intake(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandlePatch handles PATCH /sessions/{id}/intake. The body maps field names
// to values; numbers and strings are accepted and null clears a field.
func (h *IntakeHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_intake"
	var body map[string]any
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	values := make(map[intake.Field]string, len(body))
	for name, raw := range body {
		f := intake.Field(name)
		if !intake.Known(f) {
			writeDomainError(w, &intake.ValidationError{Field: f, Reason: "unknown field"})
			return
		}
		s, err := rawValue(raw)
		if err != nil {
			writeDomainError(w, &intake.ValidationError{Field: f, Reason: err.Error()})
			return
		}
		values[f] = s
	}

	v, err := h.deps.SetIntakeFields(r.Context(), r.PathValue("id"), values)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func rawValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// HandleAction handles POST /sessions/{id}/intake/{next|prev|submit|reset}.
func (h *IntakeHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	const op = "api.intake_action"
	id := r.PathValue("id")

	var (
		v      service.IntakeView
		err    error
		status = http.StatusOK
	)
	switch action := r.PathValue("action"); action {
	case "next":
		v, err = h.deps.NextStep(r.Context(), id)
	case "prev":
		v, err = h.deps.PrevStep(r.Context(), id)
	case "submit":
		v, err = h.deps.SubmitIntake(r.Context(), id)
		status = http.StatusAccepted
	case "reset":
		v, err = h.deps.ResetIntake(r.Context(), id)
	default:
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrBadRequest, fmt.Errorf("unknown action %q", action)))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, status, v)
}
