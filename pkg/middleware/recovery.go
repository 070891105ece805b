package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "fitstudio/pkg/errors"
	httputil "fitstudio/pkg/http"
	"fitstudio/pkg/logger"
)

// Recovery converts handler panics into the same opaque 500 body the error
// writer produces for unknown errors, so a panic leaks nothing extra.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("Panic recovered",
						"request_id", requestIDFrom(r),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					_ = httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
						Error: "Internal server error",
						Code:  apperrors.CodeInternal,
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
