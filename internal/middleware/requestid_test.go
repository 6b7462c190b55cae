package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "keeps caller id", incoming: "abc-123", keep: true},
		{name: "assigns when missing", incoming: ""},
		{name: "replaces oversized", incoming: strings.Repeat("x", 65)},
		{name: "replaces spaces", incoming: "bad id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(HeaderRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if seen == "" || rec.Header().Get(HeaderRequestID) != seen {
				t.Fatalf("context id %q, header %q", seen, rec.Header().Get(HeaderRequestID))
			}
			if tt.keep != (seen == tt.incoming) {
				t.Fatalf("keep=%v but got %q for %q", tt.keep, seen, tt.incoming)
			}
		})
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestID(Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	})))
	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	req.Header.Set(HeaderRequestID, "rid-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{`"status":418`, `"path":"/v1/state"`, `"request_id":"rid-1"`, `"bytes":2`} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %s missing %s", line, want)
		}
	}
}
