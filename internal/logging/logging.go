// Package logging builds the structured logger used on stderr.
package logging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const redacted = "***REDACTED***"

// New returns a logger writing text or JSON records to w. Any of the
// given secret values is replaced before a record is written.
func New(w io.Writer, format string, level slog.Level, secrets ...string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewRedactHandler(h, secrets...))
}

// BasicAuthSecrets returns the values that reveal a basic-auth password:
// the password itself and the encoded Authorization credentials.
func BasicAuthSecrets(username, password string) []string {
	if password == "" {
		return nil
	}
	return []string{
		password,
		base64.StdEncoding.EncodeToString([]byte(username + ":" + password)),
	}
}

// RedactHandler scrubs secret values from messages and attributes.
type RedactHandler struct {
	inner   slog.Handler
	secrets []string
}

// NewRedactHandler wraps inner. Empty secrets are ignored.
func NewRedactHandler(inner slog.Handler, secrets ...string) *RedactHandler {
	h := &RedactHandler{inner: inner}
	for _, s := range secrets {
		if s != "" {
			h.secrets = append(h.secrets, s)
		}
	}
	return h
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, record slog.Record) error {
	if len(h.secrets) == 0 {
		return h.inner.Handle(ctx, record)
	}
	out := slog.NewRecord(record.Time, record.Level, h.scrub(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.attr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = h.attr(a)
	}
	return &RedactHandler{inner: h.inner.WithAttrs(scrubbed), secrets: h.secrets}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{inner: h.inner.WithGroup(name), secrets: h.secrets}
}

func (h *RedactHandler) attr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.scrub(v.String()))
	case slog.KindAny:
		return slog.String(a.Key, h.scrub(fmt.Sprint(v.Any())))
	case slog.KindGroup:
		group := v.Group()
		attrs := make([]any, len(group))
		for i, g := range group {
			attrs[i] = h.attr(g)
		}
		return slog.Group(a.Key, attrs...)
	}
	return a
}

func (h *RedactHandler) scrub(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}
