package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"batchenc/internal/plan"
	"batchenc/internal/services"
)

var passCaser = cases.Title(language.English)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions
	var showCommands bool
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the commands a generate run would write without writing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := ctx.planCommands(cmd, opts, nil)
			if err != nil && !services.IsCancellation(err) {
				return err
			}
			if asJSON {
				if jsonErr := writeJSON(cmd, newPlanDocument(report)); jsonErr != nil {
					return jsonErr
				}
				return err
			}
			if showCommands {
				for _, line := range report.Commands() {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			} else {
				entries := report.Entries()
				fmt.Fprintln(cmd.OutOrStdout(), renderPlan(entries))
				fmt.Fprintf(cmd.OutOrStdout(), "%d commands for %d cuts\n", len(entries), report.CutCount())
			}
			for _, failure := range report.Failures() {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", failure)
			}
			return err
		},
	}
	opts.bind(cmd)
	_ = cmd.Flags().MarkHidden("file")
	cmd.Flags().BoolVar(&showCommands, "commands", false, "Print the raw command lines")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

func renderPlan(entries []plan.Entry) string {
	columns := []column{
		{header: "#", align: alignRight},
		{header: "Source"},
		{header: "Pass"},
		{header: "Mode"},
		{header: "CRF", align: alignRight},
		{header: "Filter"},
		{header: "Output"},
		{header: "Size Limit", align: alignRight},
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		crf := ""
		if e.Mode.UsesCRF() {
			crf = strconv.Itoa(e.CRF)
		}
		limit := ""
		if e.SizeLimit > 0 {
			limit = humanize.Bytes(uint64(e.SizeLimit))
		}
		output := e.Output
		if output == "" {
			output = e.OutputName
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			filepath.Base(e.Source),
			passCaser.String(e.Pass.String()),
			string(e.Mode),
			crf,
			e.Filter.Name,
			output,
			limit,
		})
	}
	return renderTable(columns, rows)
}
