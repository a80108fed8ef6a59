// Package command provides the linkauth-server command tree.
//
// It uses urfave/cli/v2. serve is the default command.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/linkauth-go/internal/infra/buildinfo"
	"github.com/yndnr/linkauth-go/internal/infra/confloader"
	"github.com/yndnr/linkauth-go/internal/server/config"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "linkauth-server",
		Usage:   "Signed link and session cookie authentication server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ServeCommand(),
			IssueLinkCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Action: runServe,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"LINKAUTH_CONFIG"},
		},
		&cli.StringSliceFlag{
			Name:  "env-file",
			Usage: "Load variables from a .env file (repeatable)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Override log.level (debug, info, warn, error)",
		},
	}
}

// GlobalFlags holds the values of the global flags.
type GlobalFlags struct {
	ConfigFile string
	EnvFiles   []string
	LogLevel   string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigFile: c.String("config"),
		EnvFiles:   c.StringSlice("env-file"),
		LogLevel:   c.String("log-level"),
	}
}

// newLoader builds the loader described by the global flags.
func (f *GlobalFlags) newLoader() *confloader.Loader {
	opts := []confloader.Option{confloader.WithDotEnv(f.EnvFiles...)}
	if f.ConfigFile != "" {
		opts = append(opts, confloader.WithConfigFile(f.ConfigFile))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig layers defaults, file, .env, environment and flags, then
// resolves the secret file. The result is not verified.
func loadConfig(f *GlobalFlags) (*config.ServerConfig, error) {
	cfg := config.Default()
	loader := f.newLoader()

	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if f.LogLevel != "" {
		if err := loader.LoadMap(map[string]any{"log.level": f.LogLevel}); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	if err := config.ResolveSecret(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadVerifiedConfig is loadConfig followed by config.Verify.
func loadVerifiedConfig(f *GlobalFlags) (*config.ServerConfig, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
