// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/taskdoc/internal/shared"
	"github.com/urfave/cli/v3"
)

// rootFlags are shared by every subcommand.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file (.toml, .yaml)",
			Sources: cli.EnvVars(shared.EnvConfigPath),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error); overrides logging.level",
			Sources: cli.EnvVars(shared.EnvLogLevel),
		},
	}
}

// runCommand performs one full update of every destination document
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Render today's rows and overwrite the destination documents",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Exit non-zero when any document could not be written",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run result as JSON",
			},
		},
		Action: r.Run,
	}
}

// previewCommand renders without writing
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "preview",
		Aliases: []string{"dry-run"},
		Usage:   "Show what today's run would write without touching any document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, json",
				Value:   "text",
			},
		},
		Action: r.Preview,
	}
}

// validateCommand checks the configuration and templates
func validateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the configuration file and block templates",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "credentials",
				Usage: "Also load the service account key",
			},
		},
		Action: r.Validate,
	}
}

// initCommand writes a starter configuration
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create an example configuration file and block template",
		Action: r.Init,
	}
}

// scheduleCommand keeps the process running and updates documents daily
func scheduleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Run every day at schedule.at until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "now",
				Usage: "Also run once immediately",
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "How long to wait for an in-flight run on shutdown",
				Value: 30 * time.Second,
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Serve /healthz, /status and POST /run on this address (e.g. :8080)",
			},
		},
		Action: r.Schedule,
	}
}
