package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/services"
	"github.com/desertthunder/taskdoc/internal/shared"
)

// RowSource reads every data row of one worksheet tab.
type RowSource interface {
	Rows(ctx context.Context, creds *services.Credentials, spreadsheetID, tab string) ([]models.Record, error)
}

// Matcher selects the record scheduled for today.
type Matcher interface {
	Today() string
	FindToday(records []models.Record, column string) (models.Record, bool, error)
}

// Renderer executes block templates.
type Renderer interface {
	Render(ref models.TemplateRef, ctx map[string]any) (string, error)
	RenderString(src string, ctx map[string]any) (string, error)
}

// Aggregator turns blocks into per-document content for one run.
type Aggregator struct {
	source   RowSource
	matcher  Matcher
	renderer Renderer
	logger   *log.Logger
}

// NewAggregator creates an Aggregator. A nil logger discards output.
func NewAggregator(source RowSource, matcher Matcher, renderer Renderer, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = shared.NewLogger(io.Discard, nil)
	}
	return &Aggregator{source: source, matcher: matcher, renderer: renderer, logger: logger}
}

// templateKey makes a column header usable as a template variable.
func templateKey(column string) string {
	return strings.ReplaceAll(column, " ", "_")
}

// Aggregate processes blocks in declaration order and returns the content to write
// per document along with what happened to each block.
//
// Disabled blocks are skipped without touching the sheet, and so are blocks with no
// row for today. Each rendered block is appended to its document, joined to earlier
// blocks for the same document with a newline. The first source, matcher or renderer
// error aborts the whole aggregation and no destinations are returned.
func (a *Aggregator) Aggregate(ctx context.Context, blocks []models.Block, spreadsheetID string, creds *services.Credentials, dateColumn string, progress chan<- ProgressUpdate) (*models.Destinations, []models.BlockOutcome, error) {
	dest := models.NewDestinations()
	outcomes := make([]models.BlockOutcome, 0, len(blocks))
	total := len(blocks)

	for i, b := range blocks {
		step := i + 1
		logger := shared.WithLogger(a.logger, "block", b.Name)
		outcome := models.BlockOutcome{Name: b.Name, DocID: b.DocID}

		if !b.Enabled {
			outcome.Status = models.BlockDisabled
			logger.Debug("skipping disabled block")
			outcomes = append(outcomes, outcome)
			sendProgress(progress, skipBlockUpdate(step, total, outcome))
			continue
		}

		sendProgress(progress, fetchRowsUpdate(step, total, b))
		records, err := a.source.Rows(ctx, creds, spreadsheetID, b.SheetName)
		if err != nil {
			return nil, nil, fmt.Errorf("block %q: %w", b.Name, err)
		}

		row, found, err := a.matcher.FindToday(records, dateColumn)
		if err != nil {
			return nil, nil, fmt.Errorf("block %q: %w", b.Name, err)
		}
		if !found {
			outcome.Status = models.BlockNoTask
			logger.Info("no task scheduled for today", "sheet", b.SheetName, "rows", len(records))
			outcomes = append(outcomes, outcome)
			sendProgress(progress, skipBlockUpdate(step, total, outcome))
			continue
		}

		vars := row.Context(templateKey)
		content, err := a.renderer.Render(b.Template, vars)
		if err != nil {
			return nil, nil, fmt.Errorf("block %q: %w", b.Name, err)
		}
		title, err := a.renderer.RenderString(b.TitleTemplate, vars)
		if err != nil {
			return nil, nil, fmt.Errorf("block %q title: %w", b.Name, err)
		}

		dest.Append(b.DocID, content)
		outcome.Status = models.BlockRendered
		outcome.Title = title
		outcomes = append(outcomes, outcome)

		logger.Info("rendered block", "title", title, "doc_id", b.DocID, "bytes", len(content))
		sendProgress(progress, renderBlockUpdate(step, total, outcome))
	}

	return dest, outcomes, nil
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
