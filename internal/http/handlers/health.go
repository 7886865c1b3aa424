package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/hellolink/internal/http"
	"github.com/dropDatabas3/hellolink/internal/observability/logger"
	"github.com/dropDatabas3/hellolink/internal/store"
)

// HealthHandler expone liveness y readiness.
type HealthHandler struct {
	Conn store.AdapterConnection
}

func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
}

func (h *HealthHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz verifica la conexión al almacenamiento.
func (h *HealthHandler) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.Conn.Ping(r.Context()); err != nil {
		logger.From(r.Context()).Warn("readiness check failed", logger.Err(err))
		httpx.WriteError(w, http.StatusServiceUnavailable, "storage_unavailable", "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ready",
		"storage": h.Conn.Name(),
	})
}
