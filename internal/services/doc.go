// Package services defines the shared plumbing used by the conversion
// pipeline and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp the run identifier and the current stage or
//     input file for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into run summary statuses (failed vs review).
//
// Format errors themselves live in internal/cdl; the pipeline wraps them with
// a marker from this package so the CLI can report them uniformly.
package services
