package main

import (
	"context"
	"os"
	_ "time/tzdata"

	"github.com/desertthunder/taskdoc/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil, &shared.LoggerOpts{Level: os.Getenv(shared.EnvLogLevel)})

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "taskdoc",
		Usage:    "Copy today's scheduled tasks from a Google Sheet into Google Docs",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		runner.logger.Fatalf("application error: %v", err)
	}
}
