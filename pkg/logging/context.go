package logging

import "context"

type contextKey string

const runIDKey contextKey = "eagle-run-id"

// WithRunID attaches an optimization run identifier to the context so that
// log entries produced during the run can be correlated.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID extracts the run identifier from the context, if any.
func GetRunID(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(runIDKey).(string)
	return runID, ok
}
