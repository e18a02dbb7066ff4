package main

import (
	"github.com/spf13/cobra"

	"batchenc/internal/journal"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var genOpts generateOptions
	var execOpts executeOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate the commands and execute them right away",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			file, err := commandFilePath(genOpts.file, cfg)
			if err != nil {
				return err
			}
			run := ctx.beginRun(cmd.Context(), journal.KindRun, file)
			report, err := ctx.planCommands(cmd, genOpts, run)
			if err = ctx.writeCommands(cmd, file, report, err); err != nil {
				run.finish(cmd.Context(), len(report.Commands()), len(report.Failures()), err)
				return err
			}
			summary, err := ctx.executeFile(cmd, file, execOpts, run)
			run.finish(cmd.Context(), len(report.Commands()), len(report.Failures())+summary.Failures(), err)
			return err
		},
	}
	genOpts.bind(cmd)
	execOpts.bind(cmd, false)
	return cmd
}
