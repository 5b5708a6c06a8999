package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "info", "json")).Info("hello", "k", 1)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json handler output is not JSON: %v: %s", err, buf.String())
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}

	buf.Reset()
	slog.New(NewHandler(&buf, "warn", "text")).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %s", buf.String())
	}
}

func TestWithFields_RequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	SetupWriter(&buf, "info", "text")
	defer slog.SetDefault(prev)

	var ctx context.Context
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	WithFields(ctx, "run_id", "abc").Info("analysis complete")

	out := buf.String()
	if !strings.Contains(out, "request_id=") {
		t.Errorf("log line missing request_id: %s", out)
	}
	if !strings.Contains(out, "run_id=abc") {
		t.Errorf("log line missing run_id: %s", out)
	}
}
