// Package config loads, normalizes, and validates cdlconvert configuration.
//
// Settings come from a TOML file with [output], [conversion] and [logging]
// sections. Defaults apply when no file exists. Normalization lower-cases
// format names and expands user paths; validation rejects unknown formats
// and out of range precision before any input is read.
package config
