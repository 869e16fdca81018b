package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	stageKey contextKey = "stage"
	fileKey  contextKey = "file"
)

// WithRunID annotates context with the identifier of one cdlconvert
// invocation.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, runIDKey)
}

// WithStage annotates context with the pipeline stage name (parse,
// serialize, write).
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, stageKey)
}

// WithFile annotates context with the input file being converted.
func WithFile(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, fileKey, path)
}

// FileFromContext returns the input file if present.
func FileFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, fileKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
