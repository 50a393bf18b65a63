package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/toggle-task/internal/common/logger"
)

// Pinger is satisfied by both *pgxpool.Pool and the sqlite adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthHandler(log *logger.Logger, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		status := map[string]string{"status": "ok", "storage": "ok"}
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				log.Warnf("health check: storage unavailable: %v", err)
				status["status"] = "degraded"
				status["storage"] = "unavailable"
				WriteJSON(w, http.StatusServiceUnavailable, status)
				return
			}
		}

		log.Debugf("health check request")
		WriteJSON(w, http.StatusOK, status)
	}
}
