package cdl

var (
	gradeLow   = MustParseValue("0.1")
	gradeHigh  = MustParseValue("3")
	offsetLow  = MustParseValue("-1")
	offsetHigh = MustParseValue("1")
)

// Finding flags one value that falls outside the usual grading range. Such
// values can still be intentional.
type Finding struct {
	ID      string
	Field   string
	Channel int // 0-2 for triples, -1 for saturation
	Value   Value
}

// Check reports slope, power and saturation values at or beyond 0.1 and 3,
// and offset values at or beyond -1 and 1.
func Check(cc *ColorCorrection) []Finding {
	var out []Finding
	flag := func(field string, ch int, v, lo, hi Value) {
		if v.Cmp(lo) <= 0 || v.Cmp(hi) >= 0 {
			out = append(out, Finding{ID: cc.ID(), Field: field, Channel: ch, Value: v})
		}
	}
	slope, offset, power := cc.Slope(), cc.Offset(), cc.Power()
	for i := 0; i < 3; i++ {
		flag("slope", i, slope[i], gradeLow, gradeHigh)
		flag("offset", i, offset[i], offsetLow, offsetHigh)
		flag("power", i, power[i], gradeLow, gradeHigh)
	}
	flag("saturation", -1, cc.Saturation(), gradeLow, gradeHigh)
	return out
}
