package http

import (
	"net/http"
	"runtime/debug"

	"github.com/AlibekovAA/toggle-task/internal/common/logger"
)

// RecoveryMiddleware turns a panic into a 500 for the single request.
// onPanic renders the page; nil falls back to plain text.
func RecoveryMiddleware(log *logger.Logger, onPanic http.Handler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Criticalf("panic recovered: %v\n%s", err, debug.Stack())
					if onPanic != nil {
						onPanic.ServeHTTP(w, r)
						return
					}
					WriteError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
