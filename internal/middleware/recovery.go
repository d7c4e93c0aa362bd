package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mcoot/quizgame/internal/api/apierr"
)

// Recovery creates server middleware that turns handler panics into a 500 error body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					apierr.WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Go runs fn on a new goroutine, logging instead of crashing if it panics.
// Used for push handlers and timer callbacks, which have no caller to report to.
func Go(logger *slog.Logger, name string, fn func()) {
	go func() {
		defer Recover(logger, name)
		fn()
	}()
}

// Recover logs a recovered panic; call it deferred
func Recover(logger *slog.Logger, name string) {
	if err := recover(); err != nil {
		logger.Error("panic recovered",
			slog.String("task", name),
			slog.Any("error", err),
			slog.String("stack", string(debug.Stack())),
		)
	}
}
