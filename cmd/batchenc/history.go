package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"batchenc/internal/journal"
	"batchenc/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generate, execute and run invocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					string(run.Kind),
					string(run.Status),
					strconv.Itoa(run.CommandCount),
					strconv.Itoa(run.FailureCount),
					humanize.Time(run.StartedAt),
					run.CommandFile,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "ID"},
				{header: "Kind"},
				{header: "Status"},
				{header: "Commands", align: alignRight},
				{header: "Failures", align: alignRight},
				{header: "Started"},
				{header: "Command File"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the commands and executions of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			id := strings.TrimSpace(args[0])
			run, err := store.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}
			if run == nil {
				return services.Wrap(services.ErrValidation, "cli", "history", fmt.Sprintf("run %s not found", id), nil)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:          %s\n", run.ID)
			fmt.Fprintf(out, "Kind:         %s\n", run.Kind)
			fmt.Fprintf(out, "Status:       %s\n", run.Status)
			fmt.Fprintf(out, "Started:      %s (%s)\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
			if d := run.Duration(); d > 0 {
				fmt.Fprintf(out, "Duration:     %s\n", d.Round(1e9))
			}
			if run.CommandFile != "" {
				fmt.Fprintf(out, "Command file: %s\n", run.CommandFile)
			}
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:        %s\n", run.ErrorMessage)
			}

			commands, err := store.Commands(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if len(commands) > 0 {
				rows := make([][]string, 0, len(commands))
				for _, c := range commands {
					limit := ""
					if c.SizeLimit > 0 {
						limit = humanize.Bytes(uint64(c.SizeLimit))
					}
					rows = append(rows, []string{strconv.Itoa(c.Position + 1), c.OutputName, c.Pass, c.OutputFile, limit})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "#", align: alignRight},
					{header: "Cut"},
					{header: "Pass"},
					{header: "Output"},
					{header: "Size Limit", align: alignRight},
				}, rows))
			}

			executions, err := store.Executions(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if len(executions) > 0 {
				rows := make([][]string, 0, len(executions))
				for _, e := range executions {
					rows = append(rows, []string{strconv.Itoa(e.Position + 1), strconv.Itoa(e.ExitCode), e.Duration.Round(1e6).String(), e.ErrorMessage})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "#", align: alignRight},
					{header: "Exit", align: alignRight},
					{header: "Duration", align: alignRight},
					{header: "Error"},
				}, rows))
			}
			return nil
		},
	}
}

func (c *commandContext) openJournal() (*journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "history", "the journal is disabled (journal.enabled = false)", nil)
	}
	return journal.Open(cfg)
}
