package command

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/linkauth-go/internal/infra/buildinfo"
	"github.com/yndnr/linkauth-go/internal/infra/confloader"
	"github.com/yndnr/linkauth-go/internal/infra/shutdown"
	"github.com/yndnr/linkauth-go/internal/telemetry/logger"
)

// ServeCommand runs the HTTP server. It is also the default action.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP server",
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	cfg, err := loadVerifiedConfig(flags)
	if err != nil {
		return err
	}

	appLog, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  c.App.ErrWriter,
		Dynamic: true,
	})
	if err != nil {
		return err
	}
	logger.SetDefault(appLog)
	log := logger.Slog(appLog)

	log.Info("starting linkauth-server",
		"version", buildinfo.Get().Version,
		"config", flags.ConfigFile,
		"backend", cfg.Session.Backend)

	srv, err := Build(cfg, log)
	if err != nil {
		return err
	}

	sh := shutdown.NewHandler(shutdown.DefaultTimeout, shutdown.WithLogger(log))

	// Hooks run in reverse: http, config watcher, store, access log.
	sh.OnShutdown("access-log", func(context.Context) error {
		return srv.CloseAccessLog()
	})
	sh.OnShutdown("session-store", func(context.Context) error {
		log.Info("closing session store")
		return srv.CloseStore()
	})

	if path := flags.newLoader().FilePath(); path != "" {
		watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
		if err != nil {
			_ = srv.Close()
			return err
		}
		if err := watcher.Watch(path); err != nil {
			_ = srv.Close()
			return err
		}
		watcher.OnChange(reloadLogLevel(flags, log))
		watcher.StartAsync()
		sh.OnShutdown("config-watcher", func(context.Context) error {
			return watcher.Stop()
		})
	}

	sh.OnShutdown("http", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return srv.HTTP.Shutdown(ctx)
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.HTTP.Addr())

		var err error
		if cfg.Server.HTTP.TLSCertFile != "" {
			err = srv.HTTP.ListenAndServeTLS(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile)
		} else {
			err = srv.HTTP.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			sh.Trigger()
		}
	}()

	if err := sh.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	select {
	case err := <-serveErr:
		return err
	default:
	}

	log.Info("server stopped gracefully")
	return nil
}

// reloadLogLevel re-reads the configuration and applies log.level.
// Other settings need a restart.
func reloadLogLevel(flags *GlobalFlags, log *slog.Logger) func(string) {
	return func(path string) {
		cfg, err := loadConfig(flags)
		if err != nil {
			log.Error("config reload failed", "file", path, "error", err)
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Error("config reload rejected", "file", path, "error", err)
			return
		}
		log.Info("configuration reloaded", "file", path, "log_level", cfg.Log.Level)
	}
}
