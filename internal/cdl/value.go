package cdl

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Precision selects how a Value is rendered. The zero value reproduces the
// precision the value was parsed with.
type Precision struct {
	fixed  bool
	places int32
}

// AsGiven renders values with the fractional digits they were parsed with.
var AsGiven = Precision{}

// Fixed renders values rounded to n fractional digits.
func Fixed(n int) Precision {
	if n < 0 {
		return AsGiven
	}
	return Precision{fixed: true, places: int32(n)}
}

// IsFixed reports whether p rounds to a fixed number of digits.
func (p Precision) IsFixed() bool { return p.fixed }

// Places returns the fixed digit count, or -1 for AsGiven.
func (p Precision) Places() int {
	if !p.fixed {
		return -1
	}
	return int(p.places)
}

func (p Precision) String() string {
	if !p.fixed {
		return "as-given"
	}
	return "fixed-" + strconv.Itoa(int(p.places))
}

// Value is an exact decimal number that remembers the precision of the
// numeral it was parsed from.
type Value struct {
	d decimal.Decimal
}

// maxScale bounds both the fractional digits and the positive exponent a
// numeral may carry. Rendering never uses exponent notation, so "1e-9999999"
// would otherwise expand to millions of digits.
const maxScale = 64

var (
	zeroValue = MustParseValue("0.0")
	oneValue  = MustParseValue("1.0")
)

// ParseValue parses a numeral. Exponent notation is accepted; NaN, infinities
// and anything else strconv would reject are not.
func ParseValue(text string) (Value, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Value{}, newError(ErrNumericFormat, "", "empty numeral")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Value{}, &Error{Kind: ErrNumericFormat, Detail: "invalid numeral " + strconv.Quote(trimmed)}
	}
	if exp := d.Exponent(); exp < -maxScale || exp > maxScale {
		return Value{}, &Error{Kind: ErrNumericFormat, Detail: "numeral " + strconv.Quote(trimmed) + " exceeds " + strconv.Itoa(maxScale) + " digits of scale"}
	}
	return Value{d: d}, nil
}

// MustParseValue is ParseValue for literals known to be valid.
func MustParseValue(text string) Value {
	v, err := ParseValue(text)
	if err != nil {
		panic(err)
	}
	return v
}

// Equal reports numeric equality, ignoring trailing zeros.
func (v Value) Equal(other Value) bool { return v.d.Equal(other.d) }

// Cmp compares v with other: -1, 0 or +1.
func (v Value) Cmp(other Value) int { return v.d.Cmp(other.d) }

// IsNegative reports whether v is strictly below zero.
func (v Value) IsNegative() bool { return v.d.IsNegative() }

// Decimal exposes the underlying decimal.
func (v Value) Decimal() decimal.Decimal { return v.d }

// Scale returns the number of fractional digits the value carries.
func (v Value) Scale() int {
	if exp := v.d.Exponent(); exp < 0 {
		return int(-exp)
	}
	return 0
}

// Render formats v according to p. Exponent notation is never produced.
func (v Value) Render(p Precision) string {
	if p.fixed {
		return v.d.StringFixed(p.places)
	}
	return v.d.StringFixed(int32(v.Scale()))
}

func (v Value) String() string { return v.Render(AsGiven) }

// Fit renders v in at most width characters, dropping fractional digits as
// needed. Values whose integer part alone exceeds width are returned whole.
func (v Value) Fit(width int) string {
	s := v.Render(AsGiven)
	if len(s) <= width {
		return s
	}
	intLen := len(v.d.Truncate(0).StringFixed(0))
	if v.d.IsNegative() && v.d.Truncate(0).IsZero() {
		intLen++
	}
	for places := width - intLen - 1; places >= 1; places-- {
		out := v.d.StringFixed(int32(places))
		if len(out) <= width {
			return out
		}
	}
	return v.d.StringFixed(0)
}

// MarshalText renders the value as given.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.Render(AsGiven)), nil
}

// UnmarshalText parses a numeral.
func (v *Value) UnmarshalText(b []byte) error {
	parsed, err := ParseValue(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Clamp returns zero when v is negative, otherwise v.
func (v Value) Clamp() Value {
	if v.d.IsNegative() {
		return zeroValue
	}
	return v
}
