package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"batchenc/internal/plan"
)

// planDocument is the JSON form of a plan run.
type planDocument struct {
	Commands    int         `json:"commands"`
	Cuts        int         `json:"cuts"`
	Interleaved bool        `json:"interleaved"`
	Entries     []planEntry `json:"entries"`
	Skipped     []string    `json:"skipped,omitempty"`
}

// planEntry is the JSON shape of one planned command.
type planEntry struct {
	Position   int    `json:"position"`
	Source     string `json:"source"`
	OutputName string `json:"output_name"`
	Pass       string `json:"pass"`
	Mode       string `json:"mode"`
	CRF        int    `json:"crf,omitempty"`
	Filter     string `json:"filter,omitempty"`
	Output     string `json:"output,omitempty"`
	SizeLimit  int64  `json:"size_limit,omitempty"`
	Command    string `json:"command"`
}

func newPlanDocument(report plan.Report) planDocument {
	entries := report.Entries()
	doc := planDocument{
		Commands:    len(entries),
		Cuts:        report.CutCount(),
		Interleaved: report.Interleaved,
		Entries:     make([]planEntry, len(entries)),
	}
	for i, e := range entries {
		doc.Entries[i] = planEntry{
			Position:   i + 1,
			Source:     e.Source,
			OutputName: e.OutputName,
			Pass:       e.Pass.String(),
			Mode:       string(e.Mode),
			Filter:     e.Filter.Name,
			Output:     e.Output,
			SizeLimit:  e.SizeLimit,
			Command:    e.Line,
		}
		if e.Mode.UsesCRF() {
			doc.Entries[i].CRF = e.CRF
		}
	}
	for _, failure := range report.Failures() {
		doc.Skipped = append(doc.Skipped, failure.Error())
	}
	return doc
}

// writeJSON encodes v as indented JSON to the command's stdout. HTML
// escaping is off so filter graphs and redirections stay pasteable.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
