package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/shared"
	"github.com/desertthunder/taskdoc/internal/tasks"
)

// Run states reported by /status and /run.
const (
	StateNeverRun = "never_run"
	StateOK       = "ok"
	StatePartial  = "failed_writes"
	StateAborted  = "aborted"
)

// Bot is the part of [tasks.Bot] the status handler drives.
type Bot interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.RunResult, error)
	LastRun() (*models.RunResult, error)
}

// RunStatus is the JSON body of /status and /run.
type RunStatus struct {
	State       string            `json:"state"`
	Result      *models.RunResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	WriteErrors map[string]string `json:"write_errors,omitempty"`
}

// NewRunStatus describes the outcome of one run.
func NewRunStatus(result *models.RunResult, err error) RunStatus {
	switch {
	case err != nil:
		return RunStatus{State: StateAborted, Error: err.Error()}
	case result == nil:
		return RunStatus{State: StateNeverRun}
	}

	status := RunStatus{State: StateOK, Result: result}
	if !result.OK() {
		status.State = StatePartial
		status.WriteErrors = make(map[string]string, result.Failed)
		for _, w := range result.Writes {
			if w.Err != nil {
				status.WriteErrors[w.DocID] = w.Err.Error()
			}
		}
	}
	return status
}

// StatusHandler serves health, last-run status and manual triggering for a running schedule.
type StatusHandler struct {
	bot    Bot
	logger *log.Logger
}

// NewStatusHandler creates a handler for bot. A nil logger discards output.
func NewStatusHandler(bot Bot, logger *log.Logger) *StatusHandler {
	if logger == nil {
		logger = shared.NewLogger(io.Discard, nil)
	}
	return &StatusHandler{bot: bot, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *StatusHandler) Routes() []string {
	return []string{"GET /healthz", "GET /status", "POST /run"}
}

// ServeHTTP dispatches on the matched route pattern.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /healthz":
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case "GET /status":
		h.writeJSON(w, http.StatusOK, NewRunStatus(h.bot.LastRun()))
	case "POST /run":
		h.trigger(w, r)
	default:
		http.NotFound(w, r)
	}
}

// trigger runs the bot detached from the request context; a client that disconnects does not stop the run.
func (h *StatusHandler) trigger(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("run triggered over http", "remote", r.RemoteAddr)

	result, err := h.bot.Run(context.WithoutCancel(r.Context()), nil)
	code := http.StatusOK
	if err != nil {
		code = http.StatusInternalServerError
	}
	h.writeJSON(w, code, NewRunStatus(result, err))
}

func (h *StatusHandler) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to write response", "err", err)
	}
}

// NewStatusServer returns an [http.Server] on addr serving a [StatusHandler] for bot.
func NewStatusServer(addr string, bot Bot, logger *log.Logger) *http.Server {
	handler := NewStatusHandler(bot, logger)

	router := NewBasicRouter()
	router.Use(RequestLogger(handler.logger))
	router.Handler(handler)

	return &http.Server{Addr: addr, Handler: router}
}
