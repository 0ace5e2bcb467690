package metrics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// serveLogged runs req through a ratio route wrapped in LoggingMiddleware
// and returns the response and the decoded log line.
func serveLogged(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&buf), zapcore.InfoLevel)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/ratio", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "" {
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	w := httptest.NewRecorder()
	LoggingMiddleware(zap.New(core))(mux).ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v, log: %s", err, buf.String())
	}
	return w, entry
}

func TestLoggingMiddleware_RequestLine(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ratio?symbol=TCS.NS", nil)
	_, entry := serveLogged(t, req)

	want := map[string]any{
		"method": "GET",
		"route":  "/api/v1/ratio",
		"path":   "/api/v1/ratio",
		"query":  "symbol=TCS.NS",
		"status": float64(200),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, entry[k])
		}
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("expected duration_ms in log entry")
	}
}

func TestLoggingMiddleware_StatusAndUnmatchedRoute(t *testing.T) {
	_, entry := serveLogged(t, httptest.NewRequest(http.MethodGet, "/api/v1/ratio", nil))
	if entry["status"] != float64(http.StatusBadRequest) {
		t.Errorf("expected status 400, got %v", entry["status"])
	}

	_, entry = serveLogged(t, httptest.NewRequest(http.MethodGet, "/api/v2/ratio", nil))
	if entry["route"] != UnmatchedRoute || entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("expected unmatched 404, got route=%v status=%v", entry["route"], entry["status"])
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	w, entry := serveLogged(t, httptest.NewRequest(http.MethodGet, "/api/v1/ratio?symbol=TCS.NS", nil))
	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("expected a generated X-Request-ID")
	}
	if entry["request_id"] != id {
		t.Errorf("expected request_id %s, got %v", id, entry["request_id"])
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ratio?symbol=TCS.NS", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	w, entry = serveLogged(t, req)
	if w.Header().Get(RequestIDHeader) != "upstream-42" || entry["request_id"] != "upstream-42" {
		t.Errorf("expected caller id to be reused, got header=%q log=%v", w.Header().Get(RequestIDHeader), entry["request_id"])
	}
}

func TestLoggingMiddleware_ClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		want      string
	}{
		{"remote addr", "", "10.0.0.1:54321"},
		{"forwarded chain", "203.0.113.50, 10.0.0.7", "203.0.113.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ratio?symbol=TCS.NS", nil)
			req.RemoteAddr = "10.0.0.1:54321"
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			_, entry := serveLogged(t, req)
			if entry["client_ip"] != tt.want {
				t.Errorf("expected client_ip %s, got %v", tt.want, entry["client_ip"])
			}
		})
	}
}
