package tasks

import (
	"fmt"

	"github.com/desertthunder/taskdoc/internal/models"
)

// ProgressUpdate represents a progress event during a run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	AcquireCredentials Phase = iota
	FetchRows
	RenderBlock
	SkipBlock
	WriteDoc
	Finished
)

func (p Phase) String() string {
	switch p {
	case AcquireCredentials:
		return "acquire_credentials"
	case FetchRows:
		return "fetch_rows"
	case RenderBlock:
		return "render_block"
	case SkipBlock:
		return "skip_block"
	case WriteDoc:
		return "write_doc"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

func credentialsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireCredentials,
		Step:    1,
		Total:   1,
		Message: "Loading service account credentials...",
	}
}

func fetchRowsUpdate(step, total int, b models.Block) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRows,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading %q for %s...", step, total, b.SheetName, b.Name),
	}
}

func skipBlockUpdate(step, total int, outcome models.BlockOutcome) ProgressUpdate {
	reason := "disabled"
	if outcome.Status == models.BlockNoTask {
		reason = "no task today"
	}
	return ProgressUpdate{
		Phase:   SkipBlock,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s (%s)", step, total, outcome.Name, reason),
		Data:    outcome,
	}
}

func renderBlockUpdate(step, total int, outcome models.BlockOutcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderBlock,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s: %s", step, total, outcome.Name, outcome.Title),
		Data:    outcome,
	}
}

func writeDocUpdate(step, total int, w models.WriteOutcome) ProgressUpdate {
	if w.Err != nil {
		return ProgressUpdate{
			Phase:   WriteDoc,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, w.DocID, w.Err),
			Data:    w,
		}
	}
	return ProgressUpdate{
		Phase:   WriteDoc,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d bytes)", step, total, w.DocID, w.Bytes),
		Data:    w,
	}
}

func finishedUpdate(r *models.RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finished,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Updated %d document(s), %d failed", r.Updated, r.Failed),
		Data:    r,
	}
}
