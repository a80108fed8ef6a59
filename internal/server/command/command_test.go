package command

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/linkauth-go/internal/core/domain"
	"github.com/yndnr/linkauth-go/internal/server/config"
	"github.com/yndnr/linkauth-go/internal/telemetry/logger"
	"github.com/yndnr/linkauth-go/pkg/signer"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"linkauth-server"}, args...))
	return out.String(), err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "linkauth-server" {
		t.Errorf("Name = %q", app.Name)
	}

	commands := make(map[string]bool)
	for _, cmd := range app.Commands {
		commands[cmd.Name] = true
	}
	for _, name := range []string{"serve", "issue-link", "config", "version"} {
		if !commands[name] {
			t.Errorf("missing command %q", name)
		}
	}

	flags := make(map[string]bool)
	for _, f := range app.Flags {
		flags[f.Names()[0]] = true
	}
	for _, name := range []string{"config", "env-file", "log-level"} {
		if !flags[name] {
			t.Errorf("missing flag %q", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runApp(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "linkauth-server ") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigShow_RedactsSecret(t *testing.T) {
	t.Setenv("LINKAUTH_SECURITY__SECRET_KEY", "very-secret-value")
	t.Setenv("LINKAUTH_LINK__USER_ID", "9")

	out, err := runApp(t, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if strings.Contains(out, "very-secret-value") {
		t.Error("config show printed the secret")
	}
	for _, want := range []string{"secret_key:", "user_id: 9", "access_file: app.log"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestIssueLink(t *testing.T) {
	t.Setenv("LINKAUTH_SECURITY__SECRET_KEY", "cli-secret")

	out, err := runApp(t, "issue-link", "--user-id", "42", "--base-url", "http://localhost:8000")
	if err != nil {
		t.Fatalf("issue-link error = %v", err)
	}

	const prefix = "http://localhost:8000/protected?token="
	link := strings.TrimSpace(out)
	if !strings.HasPrefix(link, prefix) {
		t.Fatalf("link = %q, want prefix %q", link, prefix)
	}

	sgn, _ := signer.New("cli-secret")
	var claims domain.LinkClaims
	if err := sgn.Verify(strings.TrimPrefix(link, prefix), signer.NoMaxAge, &claims); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
}

func TestIssueLink_RequiresSecret(t *testing.T) {
	t.Setenv("LINKAUTH_SECURITY__SECRET_KEY", "")

	if _, err := runApp(t, "issue-link"); err == nil || !strings.Contains(err.Error(), "secret_key") {
		t.Errorf("issue-link error = %v, want missing secret", err)
	}
}

func TestLoadConfig_Layers(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "linkauth.yaml")
	secretFile := filepath.Join(dir, "secret")
	if err := os.WriteFile(secretFile, []byte("mounted\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	yaml := "log:\n  level: warn\nsecurity:\n  secret_key_file: " + secretFile + "\nlink:\n  max_age: 60s\n"
	if err := os.WriteFile(cfgFile, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadVerifiedConfig(&GlobalFlags{ConfigFile: cfgFile, LogLevel: "debug"})
	if err != nil {
		t.Fatalf("loadVerifiedConfig() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, flag should win", cfg.Log.Level)
	}
	if cfg.Security.SecretKey != "mounted" {
		t.Errorf("SecretKey = %q, want mounted", cfg.Security.SecretKey)
	}
	if cfg.Link.MaxAge.Seconds() != 60 {
		t.Errorf("Link.MaxAge = %v, want 60s", cfg.Link.MaxAge)
	}
	if cfg.Server.HTTP.Addr != config.DefaultHTTPAddr {
		t.Errorf("Addr = %q, default lost", cfg.Server.HTTP.Addr)
	}
}

func TestReloadLogLevel(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "linkauth.yaml")
	if err := os.WriteFile(cfgFile, []byte("log:\n  level: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	before := logger.GetLevel()
	t.Cleanup(func() { _ = logger.SetLevel(before) })

	reloadLogLevel(&GlobalFlags{ConfigFile: cfgFile}, quietLogger())(cfgFile)
	if got := logger.GetLevel(); got != "error" {
		t.Errorf("level = %q, want error", got)
	}

	if err := os.WriteFile(cfgFile, []byte("log:\n  level: shouting\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	reloadLogLevel(&GlobalFlags{ConfigFile: cfgFile}, quietLogger())(cfgFile)
	if got := logger.GetLevel(); got != "error" {
		t.Errorf("level = %q, an invalid level must be ignored", got)
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	for _, backend := range []string{"memory", "badger"} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Security.SecretKey = "build-secret"
			cfg.Session.Backend = backend
			cfg.Log.AccessFile = filepath.Join(t.TempDir(), "logs", "app.log")
			if err := config.Verify(cfg); err != nil {
				t.Fatalf("Verify() error = %v", err)
			}

			srv, err := Build(cfg, quietLogger())
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			defer srv.Close()

			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("login status = %d", rec.Code)
			}
			cookie := rec.Result().Cookies()[0]

			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			req.AddCookie(cookie)
			rec = httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("dashboard status = %d", rec.Code)
			}

			rec = httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			if !strings.Contains(rec.Body.String(), "linkauth_sessions_active 1") {
				t.Errorf("metrics missing live session gauge:\n%s", rec.Body.String())
			}

			data, err := os.ReadFile(cfg.Log.AccessFile)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
			if len(lines) != 2 {
				t.Fatalf("access lines = %q, want 2", lines)
			}
			if !strings.Contains(lines[1], " - INFO - 192.0.2.1 - Dashboard accessed by user 1") {
				t.Errorf("access line = %q", lines[1])
			}
		})
	}
}
