package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"

	"batchenc/internal/journal"
	"batchenc/internal/logging"
	"batchenc/internal/services"
)

// Recorder stores execution results, typically the run journal.
type Recorder interface {
	RecordExecution(ctx context.Context, runID string, e journal.Execution) error
}

// Result is the outcome of one command.
type Result struct {
	Index    int
	Command  string
	ExitCode int
	Duration time.Duration
	Err      error
}

// Failed reports whether the command did not exit cleanly.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Summary collects the results of a run in execution order.
type Summary struct {
	Results []Result
	Total   int
}

// Failures returns how many executed commands failed.
func (s Summary) Failures() int {
	n := 0
	for _, r := range s.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Err summarizes failed commands as a services.ErrExternalTool error, or
// nil when every command succeeded.
func (s Summary) Err() error {
	failed := s.Failures()
	if failed == 0 {
		return nil
	}
	return services.Wrap(services.ErrExternalTool, "execute", "commands", fmt.Sprintf("%d of %d commands failed", failed, len(s.Results)), nil)
}

// Executor runs command lines in order.
type Executor struct {
	// Shell overrides the interpreter; the default is /bin/sh -c, or
	// cmd /C on Windows.
	Shell    []string
	Stdout   io.Writer
	Stderr   io.Writer
	Progress io.Writer
	Recorder Recorder
	RunID    string
	Logger   *slog.Logger
}

// Run executes commands one by one and returns every result. Failures do
// not stop the run. Cancellation stops before the next command and returns
// services.ErrCancelled with the results gathered so far.
func (e *Executor) Run(ctx context.Context, commands []string) (Summary, error) {
	ctx = services.WithStage(ctx, "execute")
	if e.RunID != "" {
		ctx = services.WithRunID(ctx, e.RunID)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(e.Logger, "execute"))
	summary := Summary{Total: len(commands)}

	var bar *progressbar.ProgressBar
	if e.Progress != nil && len(commands) > 0 {
		bar = progressbar.NewOptions(len(commands),
			progressbar.OptionSetWriter(e.Progress),
			progressbar.OptionSetDescription("Encoding"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetPredictTime(true),
		)
	}

	for i, command := range commands {
		if err := ctx.Err(); err != nil {
			return summary, services.Wrap(services.ErrCancelled, "execute", "commands", fmt.Sprintf("stopped before command %d of %d", i+1, len(commands)), err)
		}
		logger.Info("running command",
			logging.Int("index", i+1),
			logging.Int("commands", len(commands)),
		)
		logger.Debug("command line", logging.String("command", command))

		result := e.runOne(ctx, i, command)
		summary.Results = append(summary.Results, result)
		if result.Failed() {
			logger.Warn("command failed",
				logging.Int("index", i+1),
				logging.Int("exit_code", result.ExitCode),
				logging.Error(result.Err),
			)
		}
		if e.Recorder != nil && e.RunID != "" {
			message := ""
			if result.Err != nil {
				message = result.Err.Error()
			}
			if err := e.Recorder.RecordExecution(ctx, e.RunID, journal.Execution{
				Position:     i,
				Line:         command,
				ExitCode:     result.ExitCode,
				Duration:     result.Duration,
				ErrorMessage: message,
			}); err != nil {
				logger.Warn("journal write failed", logging.Error(err))
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		if ctx.Err() != nil {
			return summary, services.Wrap(services.ErrCancelled, "execute", "commands", fmt.Sprintf("interrupted during command %d of %d", i+1, len(commands)), ctx.Err())
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	logger.Info("commands finished",
		logging.Int("commands", len(commands)),
		logging.Int("failures", summary.Failures()),
	)
	return summary, nil
}

func (e *Executor) runOne(ctx context.Context, index int, command string) Result {
	shell := e.Shell
	if len(shell) == 0 {
		shell = defaultShell()
	}
	args := append(append([]string(nil), shell[1:]...), command)
	cmd := exec.CommandContext(ctx, shell[0], args...) //nolint:gosec
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	started := time.Now()
	err := cmd.Run()
	result := Result{Index: index, Command: command, Duration: time.Since(started), Err: err}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
	}
	return result
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"/bin/sh", "-c"}
}
