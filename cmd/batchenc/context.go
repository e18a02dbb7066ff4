package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"batchenc/internal/config"
	"batchenc/internal/journal"
	"batchenc/internal/logging"
	"batchenc/internal/notifications"
	"batchenc/internal/services"
)

// stdinIsTerminal decides between the interactive prompts and cut sheets.
var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if !logging.ValidLevel(level) {
				c.configErr = services.Wrap(services.ErrConfiguration, "cli", "log-level", fmt.Sprintf("unsupported level %q", level), nil)
				return
			}
			cfg.Logging.Level = level
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// runJournal tracks one journal row. A nil *runJournal is valid and does
// nothing, which is what a disabled or unavailable journal yields.
type runJournal struct {
	store  *journal.Store
	run    journal.Run
	logger *slog.Logger
}

func (c *commandContext) beginRun(ctx context.Context, kind journal.Kind, commandFile string) *runJournal {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.Journal.Enabled {
		return nil
	}
	logger, _ := c.ensureLogger()
	logger = logging.NewComponentLogger(logger, "journal")
	store, err := journal.Open(cfg)
	if err != nil {
		logger.Warn("journal unavailable; continuing without it", logging.Error(err))
		return nil
	}
	run, err := store.BeginRun(ctx, kind, commandFile)
	if err != nil {
		logger.Warn("journal unavailable; continuing without it", logging.Error(err))
		_ = store.Close()
		return nil
	}
	return &runJournal{store: store, run: run, logger: logger}
}

func (j *runJournal) id() string {
	if j == nil {
		return ""
	}
	return j.run.ID
}

func (j *runJournal) recorder() *journal.Store {
	if j == nil {
		return nil
	}
	return j.store
}

func (j *runJournal) finish(ctx context.Context, commands, failures int, runErr error) {
	if j == nil {
		return
	}
	status := journal.StatusCompleted
	switch {
	case services.IsCancellation(runErr):
		status = journal.StatusCancelled
	case runErr != nil:
		status = journal.StatusFailed
	}
	if err := j.store.FinishRun(context.WithoutCancel(ctx), j.run.ID, status, commands, failures, runErr); err != nil {
		j.logger.Warn("journal write failed", logging.Error(err))
	}
	_ = j.store.Close()
}

// notify publishes event and logs delivery failures; notifications never
// fail a command.
func (c *commandContext) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	if err := notifications.NewService(cfg).Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		logger, _ := c.ensureLogger()
		logging.NewComponentLogger(logger, "notifications").Warn("notification failed",
			logging.String("event", string(event)),
			logging.Error(err),
		)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
