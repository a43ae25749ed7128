package api

import (
	"context"
	"fmt"
	"net/http"

	service "github.com/okian/cardiocare/internal/app"
)

// MonitorDependencies defines the interface for heartbeat monitor operations.
type MonitorDependencies interface {
	Monitor(ctx context.Context, id string) (service.MonitorView, error)
	StartMonitor(ctx context.Context, id string) (service.MonitorView, error)
	StopMonitor(ctx context.Context, id string) (service.MonitorView, error)
}

// MonitorHandler handles heartbeat monitor requests.
type MonitorHandler struct {
	deps MonitorDependencies
}

// NewMonitorHandler creates a new monitor handler.
func NewMonitorHandler(deps MonitorDependencies) *MonitorHandler {
	return &MonitorHandler{deps: deps}
}

// HandleGet handles GET /sessions/{id}/monitor.
func (h *MonitorHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Monitor(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleAction handles POST /sessions/{id}/monitor/{start|stop}.
func (h *MonitorHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	const op = "api.monitor_action"
	id := r.PathValue("id")

	var (
		v   service.MonitorView
		err error
	)
	switch action := r.PathValue("action"); action {
	case "start":
		v, err = h.deps.StartMonitor(r.Context(), id)
	case "stop":
		v, err = h.deps.StopMonitor(r.Context(), id)
	default:
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrBadRequest, fmt.Errorf("unknown action %q", action)))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
