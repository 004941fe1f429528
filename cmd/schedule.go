package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/taskdoc/internal/server"
	"github.com/urfave/cli/v3"
)

// Schedule starts the daily schedule and blocks until SIGINT or SIGTERM, then stops it gracefully.
//
// With --listen, a status server runs alongside the schedule and is shut down with it.
func (r *Runner) Schedule(ctx context.Context, cmd *cli.Command) error {
	bot, err := r.bot(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("now") {
		if _, err := bot.Run(ctx, nil); err != nil {
			r.logger.Error("initial run failed", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx); err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	var srv *http.Server
	if addr := cmd.String("listen"); addr != "" {
		srv = server.NewStatusServer(addr, bot, r.logger)
		go func() {
			r.logger.Info("status server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		r.logger.Info("shutting down")
	case err = <-serveErr:
		r.logger.Error("status server failed", "err", err)
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cmd.Duration("shutdown-timeout"))
	defer cancel()

	if srv != nil {
		if shutdownErr := srv.Shutdown(stopCtx); shutdownErr != nil {
			r.logger.Warn("status server shutdown", "err", shutdownErr)
		}
	}
	return errors.Join(err, bot.Stop(stopCtx))
}
