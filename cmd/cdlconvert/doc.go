// Package main hosts the cdlconvert CLI entrypoint and command graph.
//
// The root command converts color correction files between formats; the
// formats, inspect, verify and config subcommands cover discovery, review
// and setup. Settings come from the TOML config file, then CDLCONVERT_
// environment variables, then flags.
//
// Keep this package lean: conversion logic belongs in internal/convert and
// the format codecs in internal/formats.
package main
