package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		env, level string
		want       slog.Level
	}{
		{"production", "", slog.LevelInfo},
		{"local", "", slog.LevelDebug},
		{"production", "debug", slog.LevelDebug},
		{"local", "WARN", slog.LevelWarn},
		{"dev", "error", slog.LevelError},
		{"staging", "bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.env, tc.level); got != tc.want {
			t.Fatalf("ParseLevel(%q, %q) = %v, want %v", tc.env, tc.level, got, tc.want)
		}
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "production", "info")
	ctx := With(context.Background(), l.With("call_sid", "CA1"))
	From(ctx).Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["call_sid"] != "CA1" || line["msg"] != "hello" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if From(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger fallback")
	}
}

func TestMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Middleware(NewWithWriter(&buf, "production", "info")))
	r.GET("/x", func(c *gin.Context) {
		if FromGin(c) == slog.Default() {
			t.Errorf("expected request logger in gin context")
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(headerRequestID); got != "req-1" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"req-1"`)) {
		t.Fatalf("expected request id in log: %s", buf.String())
	}
}
