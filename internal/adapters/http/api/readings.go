package api

import (
	"context"
	"net/http"

	"github.com/okian/cardiocare/internal/domain/tracker"
)

// ReadingDependencies defines the interface for reading log operations.
type ReadingDependencies interface {
	AddReading(ctx context.Context, id string, e tracker.Entry) (tracker.Reading, error)
	Readings(ctx context.Context, id string, kind tracker.Kind) ([]tracker.Reading, error)
	ClearReadings(ctx context.Context, id string) error
}

type readingsResponse struct {
	Kind     tracker.Kind      `json:"kind"`
	Readings []tracker.Reading `json:"readings"`
}

// ReadingHandler handles reading log requests.
type ReadingHandler struct {
	deps ReadingDependencies
}

// NewReadingHandler creates a new reading handler.
func NewReadingHandler(deps ReadingDependencies) *ReadingHandler {
	return &ReadingHandler{deps: deps}
}

// HandleAdd handles POST /sessions/{id}/readings.
func (h *ReadingHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_reading"
	var e tracker.Entry
	if err := decodeJSON(w, r, &e); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	reading, err := h.deps.AddReading(r.Context(), r.PathValue("id"), e)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

// HandleList handles GET /sessions/{id}/readings/{kind}.
func (h *ReadingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	kind := tracker.Kind(r.PathValue("kind"))
	list, err := h.deps.Readings(r.Context(), r.PathValue("id"), kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if list == nil {
		list = []tracker.Reading{}
	}
	writeJSON(w, http.StatusOK, readingsResponse{Kind: kind, Readings: list})
}

// HandleClear handles DELETE /sessions/{id}/readings.
func (h *ReadingHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.ClearReadings(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
