// Package logging assembles the slog loggers used by cdlconvert.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag lines with the run id and the file and stage
// being processed. Warnings go through WarnWithContext so each one carries
// an event type, a hint and its impact. NewNop serves tests and callers that
// do not care about logs.
package logging
