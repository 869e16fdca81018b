package logging

import (
	"context"
	"log/slog"

	"cdlconvert/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for the invocation identifier.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldFile is the standardized structured logging key for the input file.
	FieldFile = "file"
	// FieldFormat is the standardized structured logging key for format names.
	FieldFormat = "format"
	// FieldCorrectionID is the standardized structured logging key for correction ids.
	FieldCorrectionID = "correction_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the reader what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if file, ok := services.FileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldFile, file))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
