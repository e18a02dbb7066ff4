package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"batchenc/internal/commandfile"
	"batchenc/internal/config"
	"batchenc/internal/cutsheet"
	"batchenc/internal/encode"
	"batchenc/internal/journal"
	"batchenc/internal/logging"
	"batchenc/internal/loudnorm"
	"batchenc/internal/notifications"
	"batchenc/internal/plan"
	"batchenc/internal/preflight"
	"batchenc/internal/prompt"
	"batchenc/internal/services"
	"batchenc/internal/source"
)

type generateOptions struct {
	file        string
	inputs      []string
	cuts        string
	custom      bool
	skipFilters bool
	skipAudio   bool
}

func (o *generateOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.file, "file", "", "Command file, must end in .txt (default paths.command_file)")
	flags.StringArrayVarP(&o.inputs, "input", "i", nil, `Source file; repeat the flag or separate several with ",,"`)
	flags.StringVar(&o.cuts, "cuts", "", "TOML cut sheet answering the cut questions (no prompts)")
	flags.BoolVar(&o.custom, "custom", false, "Ask for preview, size limit, modes and CRFs for every cut")
	flags.BoolVar(&o.skipFilters, "skip-filters", false, "Use the configured video filters without asking per cut")
	flags.BoolVar(&o.skipAudio, "skip-audio-filters", false, "Do not offer fades, mute and custom audio filters per cut")
}

func commandFilePath(flag string, cfg *config.Config) (string, error) {
	path := strings.TrimSpace(flag)
	if path == "" {
		path = cfg.Paths.CommandFile
	} else {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "cli", "file", path, err)
		}
		path = expanded
	}
	if err := commandfile.ValidatePath(path); err != nil {
		return "", err
	}
	return path, nil
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask for cuts and write the encode commands to a command file",
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
			run := ctx.beginRun(cmd.Context(), journal.KindGenerate, file)
			report, err := ctx.planCommands(cmd, opts, run)
			err = ctx.writeCommands(cmd, file, report, err)
			run.finish(cmd.Context(), len(report.Commands()), len(report.Failures()), err)
			return err
		},
	}
	opts.bind(cmd)
	return cmd
}

// planCommands runs the planner with either the interactive prompts or a
// cut sheet answering the questions.
func (c *commandContext) planCommands(cmd *cobra.Command, opts generateOptions, run *runJournal) (plan.Report, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return plan.Report{}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return plan.Report{}, err
	}
	ctx := cmd.Context()

	dir, err := os.Getwd()
	if err != nil {
		return plan.Report{}, fmt.Errorf("working directory: %w", err)
	}
	if err := preflight.Err(preflight.RunAll(ctx, cfg, dir)); err != nil {
		return plan.Report{}, err
	}
	settings, err := encode.FromConfig(cfg)
	if err != nil {
		return plan.Report{}, err
	}

	opener := &source.Opener{
		FFprobe:      cfg.Binaries.FFprobe,
		FFmpeg:       cfg.Binaries.FFmpeg,
		TempDir:      cfg.TempRoot(),
		DefaultVideo: cfg.Encoding.DefaultVideoStream,
		DefaultAudio: cfg.Encoding.DefaultAudioStream,
		Logger:       logger,
	}
	planner := &plan.Planner{
		Opener:     opener,
		Measurer:   &loudnorm.Analyzer{FFmpeg: cfg.Binaries.FFmpeg, Logger: logger},
		Settings:   settings,
		Interleave: cfg.Encoding.AlternateSourceFiles,
		FFmpeg:     cfg.Binaries.FFmpeg,
		RunID:      run.id(),
		Logger:     logger,
	}
	if store := run.recorder(); store != nil {
		planner.Recorder = store
	}

	var paths []string
	if opts.cuts != "" {
		sheet, err := cutsheet.Load(opts.cuts)
		if err != nil {
			return plan.Report{}, err
		}
		opener.Chooser = sheet
		planner.Collector = sheet
		planner.Customizer = sheet
		paths = sheet.Paths()
		if len(opts.inputs) > 0 {
			if paths, err = resolveSources(ctx, cfg, opts.inputs, nil); err != nil {
				return plan.Report{}, err
			}
		}
	} else {
		if !stdinIsTerminal() {
			return plan.Report{}, services.Wrap(services.ErrConfiguration, "cli", "cuts", "standard input is not a terminal; pass --cuts with a cut sheet", nil)
		}
		p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
		p.Logger = logger
		p.VideoFilters = !opts.skipFilters
		p.AudioFilters = !opts.skipAudio
		p.Custom = opts.custom
		p.PreferredLanguages = cfg.Encoding.PreferredAudioLanguages
		opener.Chooser = p
		planner.Collector = p
		planner.Customizer = p
		if paths, err = resolveSources(ctx, cfg, opts.inputs, p); err != nil {
			return plan.Report{}, err
		}
	}

	logging.NewComponentLogger(logger, "cli").Info("generation started",
		logging.Int("files", len(paths)),
		logging.String(logging.FieldRunID, run.id()),
	)
	return planner.Run(ctx, paths)
}

// writeCommands writes the planned commands. An interrupted run still
// writes the commands of the files completed before the interruption.
func (c *commandContext) writeCommands(cmd *cobra.Command, file string, report plan.Report, planErr error) error {
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	logger = logging.NewComponentLogger(logger, "cli")

	cancelled := services.IsCancellation(planErr)
	if planErr != nil && !cancelled {
		return planErr
	}
	lines := report.Commands()
	if len(lines) == 0 {
		if cancelled {
			return planErr
		}
		return services.Wrap(services.ErrValidation, "generate", "commands", "no commands were generated", errors.Join(report.Failures()...))
	}
	if err := commandfile.Write(file, lines); err != nil {
		return err
	}
	if cancelled {
		logger.Warn("interrupted; command file holds the files completed so far",
			logging.Int("commands", len(lines)),
			logging.String("file", file),
		)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %d commands for %d cuts to %s\n", len(lines), report.CutCount(), file)
	c.notify(cmd.Context(), notifications.EventCommandsGenerated, notifications.Payload{
		"commands": len(lines),
		"cuts":     report.CutCount(),
		"file":     file,
	})
	if failures := report.Failures(); len(failures) > 0 {
		fmt.Fprintf(out, "Skipped %d files or cuts:\n", len(failures))
		for _, failure := range failures {
			fmt.Fprintf(out, "  - %v\n", failure)
		}
	}
	return planErr
}
