// package tasks implements the daily run: read today's rows, render blocks and overwrite documents.
//
// The core type is Bot, which acquires credentials, aggregates blocks and writes each destination.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/render"
	"github.com/desertthunder/taskdoc/internal/scheduler"
	"github.com/desertthunder/taskdoc/internal/services"
	"github.com/desertthunder/taskdoc/internal/shared"
	"github.com/go-co-op/gocron"
)

// DocumentWriter replaces the content of one document.
type DocumentWriter interface {
	Overwrite(ctx context.Context, creds *services.Credentials, docID, content string) error
}

// CredentialLoader acquires the credentials used for one run.
type CredentialLoader func(ctx context.Context) (*services.Credentials, error)

// Lifecycle is implemented by components with a start/stop phase around their runs.
type Lifecycle interface {
	// Start begins scheduled work and returns immediately.
	Start(ctx context.Context) error

	// Stop ends scheduled work and waits for an in-flight run, or for ctx to expire.
	Stop(ctx context.Context) error
}

var _ Lifecycle = (*Bot)(nil)

// BotOpts contains the collaborators of a [Bot]. All fields but Logger are required.
type BotOpts struct {
	Config      *shared.Config
	Logger      *log.Logger
	Credentials CredentialLoader
	Source      RowSource
	Matcher     Matcher
	Renderer    Renderer
	Writer      DocumentWriter
}

// Bot runs the configured blocks against the sheet and writes the results.
type Bot struct {
	config      *shared.Config
	logger      *log.Logger
	credentials CredentialLoader
	matcher     Matcher
	aggregator  *Aggregator
	writer      DocumentWriter

	runMu sync.Mutex // serialises Run and Preview

	lastMu  sync.Mutex
	last    *models.RunResult
	lastErr error

	mu       sync.Mutex
	cron     *gocron.Scheduler
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// NewBot creates a Bot from opts.
func NewBot(opts BotOpts) (*Bot, error) {
	switch {
	case opts.Config == nil:
		return nil, fmt.Errorf("%w: config", shared.ErrMissingArgument)
	case opts.Credentials == nil:
		return nil, fmt.Errorf("%w: credential loader", shared.ErrMissingArgument)
	case opts.Source == nil:
		return nil, fmt.Errorf("%w: row source", shared.ErrMissingArgument)
	case opts.Matcher == nil:
		return nil, fmt.Errorf("%w: matcher", shared.ErrMissingArgument)
	case opts.Renderer == nil:
		return nil, fmt.Errorf("%w: renderer", shared.ErrMissingArgument)
	case opts.Writer == nil:
		return nil, fmt.Errorf("%w: document writer", shared.ErrMissingArgument)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard, nil)
	}

	return &Bot{
		config:      opts.Config,
		logger:      logger,
		credentials: opts.Credentials,
		matcher:     opts.Matcher,
		aggregator:  NewAggregator(opts.Source, opts.Matcher, opts.Renderer, logger),
		writer:      opts.Writer,
	}, nil
}

// NewDefaultBot wires a Bot to Google Sheets and Google Docs using cfg.
func NewDefaultBot(cfg *shared.Config, logger *log.Logger) (*Bot, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return NewBot(BotOpts{
		Config: cfg,
		Logger: logger,
		Credentials: func(ctx context.Context) (*services.Credentials, error) {
			return services.LoadCredentials(ctx, services.CredentialOpts{
				Path:              cfg.CredentialsPath(),
				Scopes:            cfg.Credentials.Scopes,
				RequestsPerSecond: cfg.Google.RequestsPerSecond,
			})
		},
		Source:   services.NewSheetsService(),
		Matcher:  scheduler.NewMatcher(cfg.GoogleSheets.DateFormat, loc),
		Renderer: render.NewRenderer(),
		Writer:   services.NewDocsService(),
	})
}

// prepare acquires credentials and aggregates every block. Any error aborts the run.
func (b *Bot) prepare(ctx context.Context, logger *log.Logger, progress chan<- ProgressUpdate) (*services.Credentials, *models.Destinations, []models.BlockOutcome, error) {
	sendProgress(progress, credentialsUpdate())
	creds, err := b.credentials(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrCredentialsUnavailable) {
			err = fmt.Errorf("%w: %v", shared.ErrCredentialsUnavailable, err)
		}
		return nil, nil, nil, err
	}
	if creds != nil && creds.Email != "" {
		logger.Debug("credentials acquired", "account", creds.Email)
	}

	dest, outcomes, err := b.aggregator.Aggregate(
		ctx,
		b.config.Blocks(),
		b.config.GoogleSheets.SpreadsheetID,
		creds,
		b.config.GoogleSheets.DateColumnName,
		progress,
	)
	if err != nil {
		return nil, nil, nil, err
	}
	return creds, dest, outcomes, nil
}

// Run performs one full cycle: credentials, aggregation, then one overwrite per destination.
//
// A credential or aggregation failure returns an error and nothing is written. A failed
// write is logged and recorded in the result; the remaining documents are still written.
func (b *Bot) Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.RunResult, error) {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	result := &models.RunResult{RunID: shared.GenerateID(), StartedAt: time.Now()}
	logger := shared.WithLogger(b.logger, "run_id", result.RunID)
	logger.Info("starting run", "date", b.matcher.Today())

	creds, dest, outcomes, err := b.prepare(ctx, logger, progress)
	if err != nil {
		logger.Error("run aborted", "err", err)
		b.record(nil, err)
		return nil, err
	}
	result.Blocks = outcomes

	entries := dest.Entries()
	if len(entries) == 0 {
		logger.Info("no documents to update")
	}

	for i, d := range entries {
		w := models.WriteOutcome{DocID: d.DocID, Bytes: len(d.Content)}
		if err := b.writer.Overwrite(ctx, creds, d.DocID, d.Content); err != nil {
			w.Err, w.Error = err, err.Error()
			result.Failed++
			logger.Error("failed to update document", "doc_id", d.DocID, "err", err)
		} else {
			result.Updated++
			logger.Info("updated document", "doc_id", d.DocID, "bytes", w.Bytes)
		}
		result.Writes = append(result.Writes, w)
		sendProgress(progress, writeDocUpdate(i+1, len(entries), w))
	}

	result.FinishedAt = time.Now()
	logger.Info("run finished", "updated", result.Updated, "failed", result.Failed, "took", result.FinishedAt.Sub(result.StartedAt))
	sendProgress(progress, finishedUpdate(result))
	b.record(result, nil)
	return result, nil
}

func (b *Bot) record(result *models.RunResult, err error) {
	b.lastMu.Lock()
	defer b.lastMu.Unlock()
	b.last, b.lastErr = result, err
}

// LastRun returns the outcome of the most recent [Bot.Run]: its result, or the error that aborted it.
// Both are nil before the first run.
func (b *Bot) LastRun() (*models.RunResult, error) {
	b.lastMu.Lock()
	defer b.lastMu.Unlock()
	return b.last, b.lastErr
}

// Preview aggregates every block like [Bot.Run] but writes nothing.
func (b *Bot) Preview(ctx context.Context, progress chan<- ProgressUpdate) (*models.Preview, error) {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	preview := &models.Preview{RunID: shared.GenerateID(), Date: b.matcher.Today()}
	logger := shared.WithLogger(b.logger, "run_id", preview.RunID)

	_, dest, outcomes, err := b.prepare(ctx, logger, progress)
	if err != nil {
		return nil, err
	}

	preview.Blocks = outcomes
	preview.Destinations = dest.Entries()
	return preview, nil
}

// Start schedules a daily run at schedule.at in the sheet time zone.
// Runs never overlap; a run still going when the next one is due is skipped.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cron != nil {
		return shared.ErrAlreadyStarted
	}

	loc, err := b.config.Location()
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()

	job, err := s.Every(1).Day().At(b.config.Schedule.At).Do(b.scheduled, runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("%w: schedule.at %q: %v", shared.ErrInvalidConfig, b.config.Schedule.At, err)
	}

	s.StartAsync()
	b.cron = s
	b.cancel = cancel

	b.logger.Info("schedule started", "at", b.config.Schedule.At, "time_zone", loc.String(), "next_run", job.NextRun())
	return nil
}

// Stop shuts the scheduler down and waits for an in-flight run to finish.
// If ctx expires first, the in-flight run is cancelled and ctx's error returned.
func (b *Bot) Stop(ctx context.Context) error {
	b.mu.Lock()
	s, cancel := b.cron, b.cancel
	b.cron, b.cancel = nil, nil
	b.mu.Unlock()

	if s == nil {
		return shared.ErrNotStarted
	}
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("schedule stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("schedule stop timed out, cancelling in-flight run")
		return ctx.Err()
	}
}

// scheduled is the job body for the daily schedule.
func (b *Bot) scheduled(ctx context.Context) {
	b.inflight.Add(1)
	defer b.inflight.Done()

	result, err := b.Run(ctx, nil)
	if err != nil {
		b.logger.Error("scheduled run failed", "err", err)
		return
	}
	if !result.OK() {
		b.logger.Warn("scheduled run finished with failed writes", "run_id", result.RunID, "failed", result.Failed)
	}
}
