package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskdoc/internal/shared"
	"github.com/desertthunder/taskdoc/internal/tasks"
	"github.com/urfave/cli/v3"
)

// BotFactory builds the bot for a loaded config.
type BotFactory func(cfg *shared.Config, logger *log.Logger) (*tasks.Bot, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	logOutput  io.Writer
	output     io.Writer
	newBot     BotFactory
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // skips loading from disk when set
	ConfigPath string
	Logger     *log.Logger
	LogOutput  io.Writer // destination for loggers rebuilt from config, defaults to os.Stderr
	Output     io.Writer
	NewBot     BotFactory
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(opts.LogOutput, nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewBot == nil {
		opts.NewBot = tasks.NewDefaultBot
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		logOutput:  opts.LogOutput,
		output:     opts.Output,
		newBot:     opts.NewBot,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, previewCommand, validateCommand, initCommand, scheduleCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveConfigPath picks the config file for cmd: --config, the runner default, BOT_CONFIG_PATH, config.toml.
func (r *Runner) resolveConfigPath(cmd *cli.Command) string {
	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}
	return shared.ResolveConfigPath(path)
}

// loadConfig loads and validates the config once, then rebuilds the logger from its logging section.
// --log-level (or LOG_LEVEL) wins over logging.level.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config == nil {
		path := r.resolveConfigPath(cmd)
		cfg, err := shared.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("loaded config", "path", path, "blocks", len(cfg.DocBlocks))
		r.config = cfg
	}

	level := r.config.Logging.Level
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	r.logger = shared.NewLogger(r.logOutput, &shared.LoggerOpts{Level: level, Format: r.config.Logging.Format})
	return r.config, nil
}

// bot loads the config and builds the bot from it.
func (r *Runner) bot(cmd *cli.Command) (*tasks.Bot, error) {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return r.newBot(cfg, r.logger)
}

// progress returns a channel whose updates are logged at debug level, and a func that
// closes it and waits for the logger to drain.
func (r *Runner) progress() (chan<- tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate, 32)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range ch {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()
	return ch, func() {
		close(ch)
		wg.Wait()
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
