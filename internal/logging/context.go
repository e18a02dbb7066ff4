package logging

import (
	"context"
	"log/slog"

	"batchenc/internal/services"
)

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the structured logging key for the generation run identifier.
	FieldRunID = "run_id"
	// FieldSourceFile is the structured logging key for the source media path.
	FieldSourceFile = "source_file"
	// FieldOutputName is the structured logging key for a cut's output name.
	FieldOutputName = "output_name"
	// FieldStage is the structured logging key for the pipeline stage.
	FieldStage = "stage"
)

// ContextFields extracts the standard attributes carried on ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if path, ok := services.SourceFileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSourceFile, path))
	}
	if name, ok := services.OutputNameFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOutputName, name))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with the fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
