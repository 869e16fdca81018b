package cdl

import (
	"strconv"
	"strings"
)

// Triple holds one value per channel in R, G, B order.
type Triple [3]Value

// Uniform builds a triple with the same value on every channel.
func Uniform(v Value) Triple { return Triple{v, v, v} }

// DefaultSlope is the identity slope (1.0, 1.0, 1.0).
func DefaultSlope() Triple { return Uniform(oneValue) }

// DefaultOffset is the identity offset (0.0, 0.0, 0.0).
func DefaultOffset() Triple { return Uniform(zeroValue) }

// DefaultPower is the identity power (1.0, 1.0, 1.0).
func DefaultPower() Triple { return Uniform(oneValue) }

// DefaultSaturation is the identity saturation.
func DefaultSaturation() Value { return oneValue }

// Equal compares channel by channel with numeric equality.
func (t Triple) Equal(other Triple) bool {
	for i := range t {
		if !t[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Render joins the channels with a single space.
func (t Triple) Render(p Precision) string {
	return t[0].Render(p) + " " + t[1].Render(p) + " " + t[2].Render(p)
}

func (t Triple) String() string { return t.Render(AsGiven) }

// HasNegative reports whether any channel is below zero.
func (t Triple) HasNegative() bool {
	return t[0].IsNegative() || t[1].IsNegative() || t[2].IsNegative()
}

// Clamp replaces negative channels with zero.
func (t Triple) Clamp() Triple {
	return Triple{t[0].Clamp(), t[1].Clamp(), t[2].Clamp()}
}

// Component is a parsed slope, offset or power field before it is resolved
// to a triple. Formats that allow a single number for all channels produce a
// Scalar; the rest produce a Triple.
type Component interface {
	Triple() Triple
}

// Scalar broadcasts one value to all three channels.
type Scalar struct {
	Value Value
}

// Triple implements Component.
func (s Scalar) Triple() Triple { return Uniform(s.Value) }

// Triple implements Component.
func (t Triple) Triple() Triple { return t }

// ParseComponent parses one or three numerals. Any other count is malformed.
func ParseComponent(field string, numerals []string) (Component, error) {
	switch len(numerals) {
	case 1:
		v, err := parseField(field, numerals[0])
		if err != nil {
			return nil, err
		}
		return Scalar{Value: v}, nil
	case 3:
		return ParseTriple(field, numerals)
	default:
		return nil, &Error{
			Kind:   ErrMalformedValue,
			Field:  field,
			Detail: "expected 1 or 3 values, got " + strconv.Itoa(len(numerals)),
		}
	}
}

// ParseTriple parses exactly three numerals.
func ParseTriple(field string, numerals []string) (Triple, error) {
	if len(numerals) != 3 {
		return Triple{}, &Error{
			Kind:   ErrMalformedValue,
			Field:  field,
			Detail: "expected 3 values, got " + strconv.Itoa(len(numerals)) + " (" + strings.Join(numerals, " ") + ")",
		}
	}
	var out Triple
	for i, n := range numerals {
		v, err := parseField(field, n)
		if err != nil {
			return Triple{}, err
		}
		out[i] = v
	}
	return out, nil
}

// ParseScalar parses a single numeral for field.
func ParseScalar(field, numeral string) (Value, error) {
	return parseField(field, numeral)
}

func parseField(field, numeral string) (Value, error) {
	v, err := ParseValue(numeral)
	if err != nil {
		if ce, ok := err.(*Error); ok {
			ce.Field = field
		}
		return Value{}, err
	}
	return v, nil
}
