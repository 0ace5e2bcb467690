package metrics

import (
	"net/http"
	"strings"
	"time"
)

// UnmatchedRoute labels requests that no registered route served, so that
// path scans collapse into a single series.
const UnmatchedRoute = "unmatched"

// statusRecorder remembers the status code the handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Route returns the path of the ServeMux pattern that served r, without
// its method. It is only set once the mux has dispatched r.
func Route(r *http.Request) string {
	if r.Pattern == "" {
		return UnmatchedRoute
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// HTTPMiddleware records request count, latency and in-flight requests,
// labelled by route pattern rather than raw URL path.
func HTTPMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reg.InFlightInc()
			defer reg.InFlightDec()

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			reg.RecordRequest(r.Method, Route(r), rec.status, time.Since(start).Seconds())
		})
	}
}
