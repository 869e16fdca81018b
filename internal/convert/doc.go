// Package convert drives conversions from input files to output texts.
//
// A Converter owns one correction registry for the life of a run. Each input
// becomes a Job that moves from unparsed to parsed to serialized and ends
// done or failed; failures stay with their job and output so the rest of a
// batch keeps going. Convert handles a single input for programmatic callers,
// Run handles a batch and returns a Report, and Verify checks that a format
// reproduces its own output.
package convert
