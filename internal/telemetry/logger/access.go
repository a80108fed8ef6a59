package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ClientKey is the attribute carrying the client host in access lines.
const ClientKey = "client"

// AccessTimeLayout matches "2024-05-01 12:00:00,000".
const AccessTimeLayout = "2006-01-02 15:04:05,000"

// AccessHandler renders records as
//
//	<timestamp> - <LEVEL> - <client_host> - <message>
//
// Attributes other than ClientKey are dropped. The client host is taken from
// a ClientKey attribute or, failing that, from the record context (see
// WithClient); "-" is written when neither is set. Newlines in messages are
// escaped so each record stays a single line.
type AccessHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	client string
}

// NewAccessHandler creates an AccessHandler writing to w.
func NewAccessHandler(w io.Writer, level slog.Leveler) *AccessHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &AccessHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *AccessHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *AccessHandler) Handle(ctx context.Context, r slog.Record) error {
	client := h.client
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == ClientKey {
			client = a.Value.String()
			return false
		}
		return true
	})
	if client == "" {
		client = ClientFromContext(ctx)
	}
	if client == "" {
		client = "-"
	}

	var buf bytes.Buffer
	buf.WriteString(r.Time.Format(AccessTimeLayout))
	buf.WriteString(" - ")
	buf.WriteString(levelName(r.Level))
	buf.WriteString(" - ")
	buf.WriteString(client)
	buf.WriteString(" - ")
	buf.WriteString(escapeNewlines(r.Message))
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs implements slog.Handler.
func (h *AccessHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	for _, a := range attrs {
		if a.Key == ClientKey {
			c.client = a.Value.String()
		}
	}
	return &c
}

// WithGroup implements slog.Handler. Groups have no place in access lines.
func (h *AccessHandler) WithGroup(string) slog.Handler {
	return h
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

var newlineEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

func escapeNewlines(s string) string {
	return newlineEscaper.Replace(s)
}
