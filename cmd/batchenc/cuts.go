package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"batchenc/internal/config"
	"batchenc/internal/cutlist"
	"batchenc/internal/cutsheet"
	"batchenc/internal/fileutil"
	"batchenc/internal/services"
	"batchenc/internal/source"
)

func newCutsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cuts",
		Short: "Write and check cut sheets for non-interactive runs",
	}
	cmd.AddCommand(newCutsTemplateCommand(ctx))
	cmd.AddCommand(newCutsCheckCommand(ctx))
	return cmd
}

func newCutsTemplateCommand(ctx *commandContext) *cobra.Command {
	var inputs []string
	var output string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a cut sheet with one cut per source file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			paths, err := resolveSources(cmd.Context(), cfg, inputs, nil)
			if err != nil {
				return err
			}
			data, err := cutsheet.Template(paths)
			if err != nil {
				return fmt.Errorf("render cut sheet: %w", err)
			}
			target := strings.TrimSpace(output)
			if target == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if target, err = config.ExpandPath(target); err != nil {
				return services.Wrap(services.ErrConfiguration, "cli", "output", output, err)
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("cut sheet already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("check cut sheet path: %w", err)
				}
			}
			if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote cut sheet for %d files to %s\n", len(paths), target)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, `Source file; repeat the flag or separate several with ",,"`)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default stdout)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newCutsCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <sheet.toml>",
		Short: "Probe the listed sources and validate every cut list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			sheet, err := cutsheet.Load(args[0])
			if err != nil {
				return err
			}
			opener := &source.Opener{
				FFprobe:      cfg.Binaries.FFprobe,
				FFmpeg:       cfg.Binaries.FFmpeg,
				TempDir:      cfg.TempRoot(),
				DefaultVideo: cfg.Encoding.DefaultVideoStream,
				DefaultAudio: cfg.Encoding.DefaultAudioStream,
				Chooser:      sheet,
				Logger:       logger,
			}

			out := cmd.OutOrStdout()
			ok := color.New(color.FgGreen).SprintFunc()
			bad := color.New(color.FgRed).SprintFunc()
			registry := cutlist.NewRegistry()
			failed := 0
			for _, path := range sheet.Paths() {
				desc, err := opener.Open(cmd.Context(), path)
				if err != nil {
					if services.IsCancellation(err) {
						return err
					}
					failed++
					fmt.Fprintf(out, "%s %s: %v\n", bad("FAIL"), path, err)
					continue
				}
				batch, err := sheet.Collect(cmd.Context(), desc, nil)
				if err != nil {
					return err
				}
				result := cutlist.New(desc, registry).Validate(batch)
				if result.Valid() {
					fmt.Fprintf(out, "%s %s: %d cuts\n", ok("OK"), path, len(result.Cuts))
					continue
				}
				failed++
				fmt.Fprintf(out, "%s %s\n", bad("FAIL"), path)
				for _, v := range result.Violations {
					fmt.Fprintf(out, "  - %s\n", v)
				}
			}
			if failed > 0 {
				return services.Wrap(services.ErrValidation, "cli", "cuts", fmt.Sprintf("%d of %d sources failed", failed, len(sheet.Paths())), nil)
			}
			return nil
		},
	}
}
