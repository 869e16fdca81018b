package formats

import (
	"strconv"
	"strings"

	"cdlconvert/internal/cdl"
)

func init() {
	register(Codec{
		Format:     RCDL,
		Title:      "Rhythm & Hues space separated CDL",
		Extensions: []string{".rcdl"},
		Single:     true,
		Precision:  cdl.AsGiven,
		Parse:      parseRCDL,
		Serialize:  serializeRCDL,
	})
}

const rcdlFields = 10

// parseRCDL reads the first non-blank line: slope, offset and power
// channels followed by saturation.
func parseRCDL(raw []byte, pc ParseContext) (cdl.Model, error) {
	if err := emptyInput(raw); err != nil {
		return nil, err
	}
	var fields []string
	for _, line := range splitLines(raw) {
		if fields = strings.Fields(line); len(fields) > 0 {
			break
		}
	}
	if len(fields) != rcdlFields {
		return nil, &cdl.Error{Kind: cdl.ErrMalformedValue, Line: 1, Detail: "expected " + strconv.Itoa(rcdlFields) + " values, got " + strconv.Itoa(len(fields))}
	}

	var values sop
	for i, field := range []string{"slope", "offset", "power"} {
		t, err := cdl.ParseTriple(field, fields[i*3:i*3+3])
		if err != nil {
			return nil, err
		}
		switch i {
		case 0:
			values.slope = &t
		case 1:
			values.offset = &t
		default:
			values.power = &t
		}
	}
	sat, err := cdl.ParseScalar("saturation", fields[9])
	if err != nil {
		return nil, err
	}
	values.sat = &sat

	cc, err := pc.build(pc.stem(), values)
	if err != nil {
		return nil, err
	}
	col := cdl.NewCollection(pc.stem())
	col.Append(cc)
	return col, nil
}

func serializeRCDL(m cdl.Model, wo WriteOptions) (string, error) {
	cc, err := single(m)
	if err != nil {
		return "", err
	}
	p := precisionFor(cdl.AsGiven, wo)
	return strings.Join([]string{
		cc.Slope().Render(p),
		cc.Offset().Render(p),
		cc.Power().Render(p),
		cc.Saturation().Render(p),
	}, " ") + "\n", nil
}
