package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"batchenc/internal/cutlist"
	"batchenc/internal/encode"
	"batchenc/internal/journal"
	"batchenc/internal/logging"
	"batchenc/internal/loudnorm"
	"batchenc/internal/services"
	"batchenc/internal/source"
)

// SourceOpener probes a source file and selects its streams.
type SourceOpener interface {
	Open(ctx context.Context, path string) (*source.Descriptor, error)
}

// Measurer runs the loudness first pass of a cut.
type Measurer interface {
	Measure(ctx context.Context, cut cutlist.Cut) (loudnorm.Stats, error)
}

// Collector supplies cut submissions for a source. previous is nil on the
// first call and holds the rejected attempt afterwards. A collector that
// cannot correct a rejection returns an error, which skips the file.
type Collector interface {
	Collect(ctx context.Context, src *source.Descriptor, previous *cutlist.Result) (cutlist.Batch, error)
}

// Customizer adjusts the settings of a single cut.
type Customizer interface {
	Customize(ctx context.Context, cut cutlist.Cut, settings encode.Settings) (encode.Settings, error)
}

// Recorder stores the generated commands of a run.
type Recorder interface {
	RecordCommands(ctx context.Context, runID string, records []journal.CommandRecord) error
}

// Planner runs the per-file pipeline.
type Planner struct {
	Opener     SourceOpener
	Measurer   Measurer
	Collector  Collector
	Customizer Customizer
	Recorder   Recorder

	Settings   encode.Settings
	Registry   *cutlist.Registry
	Interleave bool
	FFmpeg     string
	RunID      string
	Logger     *slog.Logger

	// media file -> output name of the cut that writes it
	outputs map[string]string
}

// Run plans every path in order. Per-file and per-cut failures are kept in
// the report. On cancellation the returned report holds the files
// completed before the interruption and the error wraps
// services.ErrCancelled.
func (p *Planner) Run(ctx context.Context, paths []string) (Report, error) {
	if p.Registry == nil {
		p.Registry = cutlist.NewRegistry()
	}
	if p.outputs == nil {
		p.outputs = make(map[string]string)
	}
	if p.RunID != "" {
		ctx = services.WithRunID(ctx, p.RunID)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "plan"))
	report := Report{RunID: p.RunID}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return p.finish(ctx, logger, report), services.Wrap(services.ErrCancelled, "plan", "run", "interrupted before "+path, err)
		}
		file, err := p.planFile(ctx, path)
		if err != nil {
			logger.Warn("planning interrupted; keeping completed files",
				logging.String(logging.FieldSourceFile, path),
				logging.Int("files", len(report.Files)),
			)
			return p.finish(ctx, logger, report), err
		}
		report.Files = append(report.Files, file)
	}
	return p.finish(ctx, logger, report), nil
}

// planFile returns a non-nil error only for cancellation.
func (p *Planner) planFile(ctx context.Context, path string) (FilePlan, error) {
	ctx = services.WithSourceFile(ctx, path)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "plan"))
	file := FilePlan{Source: path}

	src, err := p.Opener.Open(ctx, path)
	if err != nil {
		if services.IsCancellation(err) || ctx.Err() != nil {
			return file, cancelled("open", path, err)
		}
		logger.Error("source skipped", logging.Error(err))
		file.Err = err
		return file, nil
	}

	list := cutlist.New(src, p.Registry)
	var previous *cutlist.Result
	for list.State() != cutlist.Valid {
		batch, err := p.Collector.Collect(services.WithStage(ctx, "cuts"), src, previous)
		if err != nil {
			if services.IsCancellation(err) || ctx.Err() != nil {
				return file, cancelled("cuts", path, err)
			}
			logger.Error("cut list abandoned", logging.Error(err))
			file.Err = err
			return file, nil
		}
		result := list.Validate(batch)
		if !result.Valid() {
			for _, v := range result.Violations {
				logger.Warn("cut list rejected", logging.String("reason", v.String()))
			}
			previous = &result
		}
	}

	cuts := list.Cuts()
	logger.Info("cut list accepted",
		logging.Int("cuts", len(cuts)),
		logging.String("outputs", strings.Join(list.Names(), ", ")),
	)
	for _, cut := range cuts {
		planned, err := p.planCut(ctx, cut)
		if err != nil {
			p.Registry.Release(list.Names())
			for _, done := range file.Cuts {
				p.releaseOutputs(done.Cut.OutputName, done.Commands)
			}
			return file, err
		}
		file.Cuts = append(file.Cuts, planned)
	}
	return file, nil
}

// planCut returns a non-nil error only for cancellation.
func (p *Planner) planCut(ctx context.Context, cut cutlist.Cut) (CutPlan, error) {
	ctx = services.WithOutputName(ctx, cut.OutputName)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "plan"))
	planned := CutPlan{Cut: cut, Settings: p.Settings.Clone()}

	if p.Customizer != nil {
		settings, err := p.Customizer.Customize(services.WithStage(ctx, "options"), cut, planned.Settings)
		if err != nil {
			if services.IsCancellation(err) || ctx.Err() != nil {
				return planned, cancelled("options", cut.OutputName, err)
			}
			logger.Error("cut skipped", logging.Error(err))
			planned.Err = err
			return planned, nil
		}
		planned.Settings = settings
	}

	stats, err := p.Measurer.Measure(ctx, cut)
	if err != nil {
		if services.IsCancellation(err) || ctx.Err() != nil {
			return planned, cancelled("measure", cut.OutputName, err)
		}
		logger.Error("cut skipped", logging.Error(err))
		planned.Err = err
		return planned, nil
	}

	builder := encode.NewBuilder(cut, stats)
	if p.FFmpeg != "" {
		builder.FFmpeg = p.FFmpeg
	}
	commands, err := builder.Plan(planned.Settings)
	if err != nil {
		logger.Error("cut skipped", logging.Error(err))
		planned.Err = err
		return planned, nil
	}
	if err := p.claimOutputs(cut.OutputName, commands); err != nil {
		logger.Error("cut skipped", logging.Error(err))
		planned.Err = err
		return planned, nil
	}
	planned.Commands = commands
	logger.Info("commands generated",
		logging.Int("commands", len(commands)),
		logging.Float64("duration", cut.Duration()),
		logging.Int("keyframe_interval", builder.KeyframeInterval()),
		logging.String("colorspace", builder.Colorspace().Name),
	)
	return planned, nil
}

// claimOutputs reserves the media files written by a cut's commands. Two
// cuts of a run never write the same file, even when a base name plus a
// CRF or tier suffix spells another cut's name.
func (p *Planner) claimOutputs(name string, commands []encode.Command) error {
	for _, c := range commands {
		if owner, ok := p.outputs[c.Output]; ok && c.Output != "" && owner != name {
			return services.Wrap(services.ErrValidation, "build", name,
				fmt.Sprintf("output %s is already written by cut %s", c.Output, owner), nil)
		}
	}
	for _, c := range commands {
		if c.Output != "" {
			p.outputs[c.Output] = name
		}
	}
	return nil
}

func (p *Planner) releaseOutputs(name string, commands []encode.Command) {
	for _, c := range commands {
		if p.outputs[c.Output] == name {
			delete(p.outputs, c.Output)
		}
	}
}

// finish orders the report and records it in the journal.
func (p *Planner) finish(ctx context.Context, logger *slog.Logger, report Report) Report {
	groups := report.groups()
	if p.Interleave && len(groups) > 1 {
		merged, err := Interleave(groups)
		if err != nil {
			logger.Warn("cuts have different command counts; keeping sequential order", logging.Error(err))
			report.entries = Sequential(groups)
		} else {
			report.entries = merged
			report.Interleaved = true
		}
	} else {
		report.entries = Sequential(groups)
	}

	if p.Recorder != nil && p.RunID != "" && len(report.entries) > 0 {
		if err := p.Recorder.RecordCommands(context.WithoutCancel(ctx), p.RunID, report.Records()); err != nil {
			logger.Warn("journal write failed", logging.Error(err))
		}
	}
	return report
}

func cancelled(stage, subject string, err error) error {
	if errors.Is(err, services.ErrCancelled) {
		return err
	}
	return services.Wrap(services.ErrCancelled, stage, subject, "interrupted", err)
}

// String summarizes a report for logs.
func (r Report) String() string {
	return fmt.Sprintf("%d files, %d cuts, %d commands", len(r.Files), r.CutCount(), len(r.entries))
}
