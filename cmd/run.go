package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/taskdoc/internal/formatter"
	"github.com/desertthunder/taskdoc/internal/shared"
	"github.com/urfave/cli/v3"
)

// Run performs one update of every destination document.
//
// Documents that fail to update are reported but do not fail the command unless --strict is set.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	bot, err := r.bot(cmd)
	if err != nil {
		return err
	}

	progress, done := r.progress()
	result, err := bot.Run(ctx, progress)
	done()
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(result, true); err != nil {
			return err
		}
	} else {
		out, err := formatter.ResultToText(result)
		if err != nil {
			return err
		}
		if err := r.writePlain("%s", out); err != nil {
			return err
		}
	}

	if cmd.Bool("strict") && !result.OK() {
		return fmt.Errorf("%w: %d of %d failed", shared.ErrPartialRun, result.Failed, len(result.Writes))
	}
	return nil
}

// Preview aggregates today's content and prints it instead of writing.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	bot, err := r.bot(cmd)
	if err != nil {
		return err
	}

	progress, done := r.progress()
	preview, err := bot.Preview(ctx, progress)
	done()
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	out, err := formatter.Preview(preview, format)
	if err != nil {
		return err
	}
	if err := r.writePlain("%s", out); err != nil {
		return err
	}
	if format == formatter.FormatJSON {
		return r.writePlain("\n")
	}
	return nil
}
