package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var errDatabaseUnavailable = errors.New("database is unavailable")

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	pinger    Pinger
	responder responder
	logger    *slog.Logger
}

func NewHealthHandler(pinger Pinger, logger *slog.Logger) *HealthHandler {
	base := defaultLogger(logger)
	return &HealthHandler{pinger: pinger, responder: newResponder(base), logger: base}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h == nil || h.pinger == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.pinger.Ping(r.Context()); err != nil {
		handlerLogger(r.Context(), h.logger, "HealthHandler", "Check").ErrorContext(r.Context(), "database ping failed", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusServiceUnavailable, errDatabaseUnavailable)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
