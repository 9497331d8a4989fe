package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

func TestRedactsPasswordEverywhere(t *testing.T) {
	var buf bytes.Buffer
	secrets := BasicAuthSecrets("axladmin", "Cisc0123")
	logger := New(&buf, "text", slog.LevelDebug, secrets...)

	hdr := http.Header{}
	hdr.Set("Authorization", "Basic "+secrets[1])

	logger.With(slog.String("password", "Cisc0123")).Debug("login with Cisc0123",
		slog.Any("headers", hdr),
		slog.Group("auth", slog.String("pass", "Cisc0123")))

	out := buf.String()
	if strings.Contains(out, "Cisc0123") || strings.Contains(out, secrets[1]) {
		t.Fatalf("secret leaked into log output:\n%s", out)
	}
	if n := strings.Count(out, redacted); n != 4 {
		t.Fatalf("expected 4 redactions, got %d:\n%s", n, out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "json", slog.LevelInfo).Info("hello", slog.String("endpoint", "10.0.0.1"))
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"endpoint":"10.0.0.1"`) {
		t.Fatalf("expected a JSON record, got %s", buf.String())
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "text", slog.LevelInfo).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug record to be dropped, got %s", buf.String())
	}
}

func TestBasicAuthSecretsWithoutPassword(t *testing.T) {
	if got := BasicAuthSecrets("admin", ""); got != nil {
		t.Fatalf("expected no secrets, got %v", got)
	}
}
