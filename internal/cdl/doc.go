// Package cdl holds the canonical ASC Color Decision List model shared by
// every format: exact decimal values, corrections, decision lists,
// collections, references and the identity registry that keeps correction
// ids unique within a conversion run.
//
// The registry is an ordinary value owned by the caller. Parsers receive it
// explicitly; nothing in this package keeps global state, so independent
// runs (or tests) isolate themselves with their own Registry or with Reset.
package cdl
