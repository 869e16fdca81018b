package cdl

import (
	"errors"
	"strconv"
	"strings"
)

// Error kinds. Every error produced by parsing, building or serializing a
// model matches exactly one of these through errors.Is.
var (
	ErrNumericFormat          = errors.New("numeric format error")
	ErrDuplicateID            = errors.New("duplicate id")
	ErrNoNodesFound           = errors.New("no nodes found")
	ErrMalformedValue         = errors.New("malformed value")
	ErrEmptyInput             = errors.New("empty input")
	ErrUnknownReference       = errors.New("unknown reference")
	ErrUnsupportedCardinality = errors.New("unsupported cardinality")
	ErrMissingIdentifier      = errors.New("missing identifier")
	ErrUnknownFormat          = errors.New("unknown format")
)

// NoNodesMessage is reported when a node script carries no OCIOCDLTransform blocks.
const NoNodesMessage = "The passed file does not appear to have Nuke nodes of type " +
	NodeKeyword + ". Please make sure that you are using the " + NodeKeyword +
	" nodes when exporting the CDL data."

// NodeKeyword is the node type that carries CDL values inside a node script.
const NodeKeyword = "OCIOCDLTransform"

// Error carries enough context for a user to locate the offending input:
// the source file, the format being read or written, the field and, when
// known, the correction id and line number.
type Error struct {
	Kind   error
	Format string
	Source string
	Field  string
	ID     string
	Line   int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 6)
	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	}
	if e.Source != "" {
		loc := e.Source
		if e.Line > 0 {
			loc += ":" + strconv.Itoa(e.Line)
		}
		parts = append(parts, loc)
	} else if e.Line > 0 {
		parts = append(parts, "line "+strconv.Itoa(e.Line))
	}
	if e.Format != "" {
		parts = append(parts, e.Format)
	}
	if e.ID != "" {
		parts = append(parts, strconv.Quote(e.ID))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	msg := strings.Join(parts, ": ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind marker and the underlying cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func newError(kind error, field, detail string) *Error {
	return &Error{Kind: kind, Field: field, Detail: detail}
}

// Annotate fills in missing location context on err when it is an *Error.
// Errors of other types are wrapped as-is so errors.Is keeps working.
func Annotate(err error, format, source string) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		if ce.Format == "" {
			ce.Format = format
		}
		if ce.Source == "" {
			ce.Source = source
		}
		return err
	}
	return &Error{Kind: ErrMalformedValue, Format: format, Source: source, Err: err}
}

// KindOf returns the taxonomy marker carried by err, or nil.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrNumericFormat,
		ErrDuplicateID,
		ErrNoNodesFound,
		ErrMalformedValue,
		ErrEmptyInput,
		ErrUnknownReference,
		ErrUnsupportedCardinality,
		ErrMissingIdentifier,
		ErrUnknownFormat,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
