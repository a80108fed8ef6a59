package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/linkauth-go/internal/core/service"
	"github.com/yndnr/linkauth-go/internal/infra/buildinfo"
	"github.com/yndnr/linkauth-go/internal/infra/confloader"
	"github.com/yndnr/linkauth-go/internal/server/config"
	"github.com/yndnr/linkauth-go/pkg/signer"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			_, err := fmt.Fprintf(c.App.Writer, "linkauth-server %s\n", buildinfo.String())
			return err
		},
	}
}

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration inspection",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets redacted",
				Action: configShow,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(ParseGlobalFlags(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out, err := confloader.MarshalYAML(config.Sanitize(cfg))
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(out)
	return err
}

// IssueLinkCommand prints a signed link using the configured secret.
func IssueLinkCommand() *cli.Command {
	return &cli.Command{
		Name:  "issue-link",
		Usage: "Print a signed link for the configured secret",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "user-id",
				Usage: "User id to embed (defaults to link.user_id)",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Prefix for the printed link, e.g. http://127.0.0.1:8000",
			},
		},
		Action: issueLink,
	}
}

func issueLink(c *cli.Context) error {
	cfg, err := loadVerifiedConfig(ParseGlobalFlags(c))
	if err != nil {
		return err
	}

	sgn, err := signer.New(cfg.Security.SecretKey, signer.WithSalt(cfg.Security.SignerSalt))
	if err != nil {
		return err
	}

	userID := cfg.Link.UserID
	if c.IsSet("user-id") {
		userID = c.Int64("user-id")
	}

	link, err := service.IssueLink(sgn, cfg.Link.ProtectedPath, userID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, c.String("base-url")+link)
	return err
}
