package handlers

import (
	"net/http"

	"github.com/dropDatabas3/authgate/internal/cache"
	httpx "github.com/dropDatabas3/authgate/internal/http"
)

// NewHealthHandler reporta liveness y el estado del store de sesiones.
func NewHealthHandler(store cache.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := store.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, map[string]string{"status": status})
	}
}
