package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
)

var accessLine = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3} - (DEBUG|INFO|WARNING|ERROR) - (\S+) - (.*)$`)

func newAccessLogger(t *testing.T, buf *bytes.Buffer) Logger {
	t.Helper()
	l, err := New(Config{Level: "debug", Format: FormatAccess, Output: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func TestAccessHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	l := newAccessLogger(t, &buf)

	tests := []struct {
		name      string
		log       func()
		wantLevel string
		wantHost  string
		wantMsg   string
	}{
		{
			name:      "client attribute",
			log:       func() { l.With(ClientKey, "10.0.0.7").Info("Generated secure URL token") },
			wantLevel: "INFO",
			wantHost:  "10.0.0.7",
			wantMsg:   "Generated secure URL token",
		},
		{
			name: "client from context",
			log: func() {
				ctx := WithClient(context.Background(), "192.168.1.2")
				l.WithContext(ctx).Warn("Expired token access attempt")
			},
			wantLevel: "WARNING",
			wantHost:  "192.168.1.2",
			wantMsg:   "Expired token access attempt",
		},
		{
			name:      "no client",
			log:       func() { l.Error("Unhandled error: boom") },
			wantLevel: "ERROR",
			wantHost:  "-",
			wantMsg:   "Unhandled error: boom",
		},
		{
			name:      "record attribute wins",
			log:       func() { l.Debug("probe", ClientKey, "::1", "ignored", "x") },
			wantLevel: "DEBUG",
			wantHost:  "::1",
			wantMsg:   "probe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()

			line := strings.TrimSuffix(buf.String(), "\n")
			m := accessLine.FindStringSubmatch(line)
			if m == nil {
				t.Fatalf("line %q does not match access format", line)
			}
			if m[1] != tt.wantLevel || m[2] != tt.wantHost || m[3] != tt.wantMsg {
				t.Errorf("got (%s, %s, %s), want (%s, %s, %s)",
					m[1], m[2], m[3], tt.wantLevel, tt.wantHost, tt.wantMsg)
			}
		})
	}
}

func TestAccessHandler_EscapesNewlines(t *testing.T) {
	var buf bytes.Buffer
	l := newAccessLogger(t, &buf)

	l.Error("Unhandled error: line1\nline2")

	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected a single line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `line1\nline2`) {
		t.Errorf("newline not escaped: %q", buf.String())
	}
}

func TestAccessHandler_Enabled(t *testing.T) {
	h := NewAccessHandler(&bytes.Buffer{}, slog.LevelWarn)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestAccessHandler_ConcurrentLinesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	l := newAccessLogger(t, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.With(ClientKey, "127.0.0.1").Info("User logged out")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 64 {
		t.Fatalf("got %d lines, want 64", len(lines))
	}
	for _, line := range lines {
		if !accessLine.MatchString(line) {
			t.Fatalf("corrupt line %q", line)
		}
	}
}

func TestOpenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	for i := 0; i < 2; i++ {
		f, err := OpenAppend(path)
		if err != nil {
			t.Fatalf("OpenAppend() error = %v", err)
		}
		l, err := New(Config{Level: "info", Format: FormatAccess, Output: f})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		l.Info("User logged out")
		if err := f.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := strings.Count(string(data), "User logged out"); got != 2 {
		t.Errorf("file holds %d lines, want 2 (reopen must append)", got)
	}
}
