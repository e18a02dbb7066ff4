package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"batchenc/internal/commandfile"
	"batchenc/internal/execute"
	"batchenc/internal/journal"
	"batchenc/internal/logging"
	"batchenc/internal/notifications"
	"batchenc/internal/preflight"
	"batchenc/internal/services"
)

// ffmpegLogName collects ffmpeg output under the state directory in quiet mode.
const ffmpegLogName = "ffmpeg.log"

type executeOptions struct {
	file  string
	quiet bool
}

func (o *executeOptions) bind(cmd *cobra.Command, withFile bool) {
	if withFile {
		cmd.Flags().StringVar(&o.file, "file", "", "Command file, must end in .txt (default paths.command_file)")
	}
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "Send ffmpeg output to the state directory log and show a progress bar")
}

func newExecuteCommand(ctx *commandContext) *cobra.Command {
	var opts executeOptions
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Run the commands in a command file one by one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			file, err := commandFilePath(opts.file, cfg)
			if err != nil {
				return err
			}
			run := ctx.beginRun(cmd.Context(), journal.KindExecute, file)
			summary, err := ctx.executeFile(cmd, file, opts, run)
			run.finish(cmd.Context(), summary.Total, summary.Failures(), err)
			return err
		},
	}
	opts.bind(cmd, true)
	return cmd
}

// executeFile runs every command in file while holding its lock.
func (c *commandContext) executeFile(cmd *cobra.Command, file string, opts executeOptions, run *runJournal) (execute.Summary, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return execute.Summary{}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return execute.Summary{}, err
	}
	out := cmd.OutOrStdout()

	lock, err := commandfile.Lock(file)
	if err != nil {
		return execute.Summary{}, err
	}
	defer func() {
		_ = lock.Unlock()
	}()

	lines, err := commandfile.Read(file)
	if err != nil {
		return execute.Summary{}, err
	}
	if len(lines) == 0 {
		fmt.Fprintf(out, "No commands in %s\n", file)
		return execute.Summary{}, nil
	}

	if dir, err := os.Getwd(); err == nil {
		required := execute.RequiredBytes(lines)
		if space := preflight.CheckFreeSpace("Output directory", dir, required); !space.Passed {
			logging.NewComponentLogger(logger, "cli").Warn("free space may not cover the size-limited outputs",
				logging.String("required", humanize.Bytes(uint64(required))),
				logging.String("detail", space.Detail),
			)
		}
	}

	executor := &execute.Executor{
		Stdout: out,
		Stderr: cmd.ErrOrStderr(),
		RunID:  run.id(),
		Logger: logger,
	}
	if store := run.recorder(); store != nil {
		executor.Recorder = store
	}
	if opts.quiet {
		logFile, err := os.OpenFile(filepath.Join(cfg.Paths.StateDir, ffmpegLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return execute.Summary{}, fmt.Errorf("open ffmpeg log: %w", err)
		}
		defer logFile.Close()
		executor.Stdout = logFile
		executor.Stderr = logFile
		executor.Progress = cmd.ErrOrStderr()
	}

	started := time.Now()
	summary, err := executor.Run(cmd.Context(), lines)
	printSummary(out, summary)
	if err == nil {
		err = summary.Err()
	}
	if !services.IsCancellation(err) {
		c.notify(cmd.Context(), notifications.EventExecuteCompleted, notifications.Payload{
			"executed": len(summary.Results),
			"failed":   summary.Failures(),
			"duration": time.Since(started),
		})
	}
	return summary, err
}

func printSummary(w io.Writer, summary execute.Summary) {
	fmt.Fprintf(w, "Executed %d of %d commands, %d failed\n", len(summary.Results), summary.Total, summary.Failures())
	for _, result := range summary.Results {
		if result.Failed() {
			fmt.Fprintf(w, "  - command %d exited with %d\n", result.Index+1, result.ExitCode)
		}
	}
}
