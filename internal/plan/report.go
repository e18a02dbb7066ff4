package plan

import (
	"batchenc/internal/cutlist"
	"batchenc/internal/encode"
	"batchenc/internal/journal"
)

// CutPlan is the outcome for one cut. Err is set when the cut was skipped.
type CutPlan struct {
	Cut      cutlist.Cut
	Settings encode.Settings
	Commands []encode.Command
	Err      error
}

// FilePlan is the outcome for one source file. Err is set when the file
// was skipped before any cut was built.
type FilePlan struct {
	Source string
	Cuts   []CutPlan
	Err    error
}

// Entry is one command in final order with the cut it belongs to.
type Entry struct {
	Source     string
	OutputName string
	encode.Command
}

// Report is the result of a planning run.
type Report struct {
	RunID       string
	Files       []FilePlan
	Interleaved bool
	entries     []Entry
}

// Entries returns the commands in final order.
func (r Report) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Commands returns the command lines in final order.
func (r Report) Commands() []string {
	lines := make([]string, len(r.entries))
	for i, e := range r.entries {
		lines[i] = e.Line
	}
	return lines
}

// Failures returns the errors of skipped files and cuts.
func (r Report) Failures() []error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
		for _, c := range f.Cuts {
			if c.Err != nil {
				errs = append(errs, c.Err)
			}
		}
	}
	return errs
}

// CutCount returns how many cuts produced commands.
func (r Report) CutCount() int {
	n := 0
	for _, f := range r.Files {
		for _, c := range f.Cuts {
			if c.Err == nil {
				n++
			}
		}
	}
	return n
}

// Records converts the ordered entries to journal rows.
func (r Report) Records() []journal.CommandRecord {
	records := make([]journal.CommandRecord, len(r.entries))
	for i, e := range r.entries {
		records[i] = journal.CommandRecord{
			Position:   i,
			SourcePath: e.Source,
			OutputName: e.OutputName,
			Pass:       e.Pass.String(),
			OutputFile: e.Output,
			SizeLimit:  e.SizeLimit,
			Line:       e.Line,
		}
	}
	return records
}

// groups returns one block of entries per successful cut, in plan order.
func (r Report) groups() [][]Entry {
	var groups [][]Entry
	for _, f := range r.Files {
		for _, c := range f.Cuts {
			if c.Err != nil || len(c.Commands) == 0 {
				continue
			}
			block := make([]Entry, len(c.Commands))
			for i, cmd := range c.Commands {
				block[i] = Entry{Source: f.Source, OutputName: c.Cut.OutputName, Command: cmd}
			}
			groups = append(groups, block)
		}
	}
	return groups
}
