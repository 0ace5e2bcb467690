// internal/api/middleware/recover.go
package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/newthinker/finratio/internal/api/response"
	"github.com/newthinker/finratio/internal/core"
)

// Recover returns middleware that turns a panicking handler into a
// COMPUTATION_FAILED response instead of a dropped connection.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("handler panic",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				response.Error(w, http.StatusInternalServerError,
					core.WrapError(core.ErrComputationFailed, fmt.Errorf("%v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
