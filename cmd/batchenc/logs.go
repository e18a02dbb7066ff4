package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"batchenc/internal/logging"
	"batchenc/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var ffmpeg bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the batchenc log or the ffmpeg output of quiet executions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.StateDir, logging.LogFileName)
			if ffmpeg {
				path = filepath.Join(cfg.Paths.StateDir, ffmpegLogName)
			}

			out := cmd.OutOrStdout()
			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().BoolVar(&ffmpeg, "ffmpeg", false, "Show the ffmpeg output captured by execute --quiet")
	return cmd
}
