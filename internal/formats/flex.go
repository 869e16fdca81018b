package formats

import (
	"fmt"
	"strings"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/textutil"
)

func init() {
	register(Codec{
		Format:     FLEx,
		Title:      "DaVinci FLEx telecine log",
		Extensions: []string{".flex", ".flx"},
		Precision:  cdl.AsGiven,
		Columns:    flexColumn,
		Parse:      parseFLEx,
		Serialize:  serializeFLEx,
	})
}

// flexColumn is the width of one numeral in a 701 or 702 record.
const flexColumn = 6

// flexTake collects the records between two 100 lines.
type flexTake struct {
	line              int
	scene, take, reel string
	values            sop
	hasSOP, hasSat    bool
}

func (t *flexTake) slateID() string {
	if t.scene == "" {
		return ""
	}
	id := t.scene
	if t.take != "" {
		id += "_" + t.take
		if t.reel != "" {
			id += "_" + t.reel
		}
	}
	return textutil.SanitizeID(id)
}

// column returns line[from:to] trimmed, tolerating short lines.
func column(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

type flexParser struct {
	pc    ParseContext
	list  *cdl.DecisionList
	title string
	made  int
}

// parseFLEx reads a fixed-column telecine log. Each 100 record starts a
// take; only takes carrying 701 or 702 color records become corrections.
func parseFLEx(raw []byte, pc ParseContext) (cdl.Model, error) {
	if err := emptyInput(raw); err != nil {
		return nil, err
	}
	fp := &flexParser{pc: pc, list: cdl.NewDecisionList(pc.stem())}
	var current *flexTake
	for n, line := range splitLines(raw) {
		lineNo := n + 1
		if len(line) < 3 {
			continue
		}
		code := line[:3]
		if code == "100" {
			if err := fp.flush(current); err != nil {
				return fp.list, err
			}
			current = &flexTake{line: lineNo}
			continue
		}
		if code == "010" {
			fp.title = column(line, 10, 80)
			continue
		}
		if current == nil {
			current = &flexTake{line: lineNo}
		}
		switch code {
		case "110":
			current.scene = column(line, 10, 18)
			current.take = column(line, 24, 32)
			current.reel = column(line, 42, 50)
		case "701":
			_, groups, _ := strings.Cut(line, "ASC_SOP")
			values, err := parseSOPGroups(groups)
			if err != nil {
				return fp.list, lineError(err, lineNo)
			}
			values.sat = current.values.sat
			current.values = values
			current.hasSOP = true
		case "702":
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return fp.list, &cdl.Error{Kind: cdl.ErrMalformedValue, Field: "saturation", Line: lineNo, Detail: "702 record has no value"}
			}
			v, err := cdl.ParseScalar("saturation", fields[len(fields)-1])
			if err != nil {
				return fp.list, lineError(err, lineNo)
			}
			current.values.sat = &v
			current.hasSat = true
		}
	}
	if err := fp.flush(current); err != nil {
		return fp.list, err
	}
	if fp.title != "" {
		fp.list.Descriptions = append(fp.list.Descriptions, fp.title)
	}
	if err := fp.list.ResolveReferences(pc.Registry); err != nil {
		return fp.list, err
	}
	return fp.list, nil
}

func (fp *flexParser) flush(t *flexTake) error {
	if t == nil {
		return nil
	}
	slate := t.slateID()
	if !t.hasSOP && !t.hasSat {
		if slate != "" {
			fp.list.AppendReference(slate, "")
		}
		return nil
	}
	id := slate
	if id == "" {
		base := fp.pc.stem()
		if fp.title != "" {
			base = textutil.SanitizeID(fp.title)
		}
		id = fmt.Sprintf("%s%03d", base, fp.made+1)
	}
	cc, err := fp.pc.build(id, t.values)
	if err != nil {
		return lineError(err, t.line)
	}
	if fp.title != "" {
		cc.Descriptions = append(cc.Descriptions, fp.title)
	}
	fp.made++
	fp.list.AppendCorrection(cc, t.reel)
	return nil
}

// serializeFLEx writes a minimal log. Numerals are fitted into six
// characters, so precision beyond that is lost, and ids that do not split
// into a scene, take and reel are not written at all.
func serializeFLEx(m cdl.Model, _ WriteOptions) (string, error) {
	ccs, err := many(m)
	if err != nil {
		return "", err
	}
	meta := m.Meta()
	title := meta.Name
	if len(meta.Descriptions) > 0 {
		title = meta.Descriptions[0]
	}

	var b strings.Builder
	b.WriteString("000 Manufacturer cdlconvert FLEx 1004\n")
	if title != "" {
		b.WriteString("010 Title " + title + "\n")
	}
	for i, cc := range ccs {
		fmt.Fprintf(&b, "100 Edit %03d\n", i+1)
		if slate, ok := flexSlate(cc.ID()); ok {
			b.WriteString(slate + "\n")
		}
		b.WriteString("701 ASC_SOP(" + flexTriple(cc.Slope(), false) + ")(" +
			flexTriple(cc.Offset(), true) + ")(" + flexTriple(cc.Power(), false) + ")\n")
		b.WriteString("702 ASC_SAT " + padRight(cc.Saturation().Fit(flexColumn), flexColumn) + "\n")
	}
	return b.String(), nil
}

// flexSlate builds a 110 record when id splits into at most three parts
// that each fit an eight character column.
func flexSlate(id string) (string, bool) {
	parts := strings.Split(id, "_")
	if len(parts) > 3 {
		return "", false
	}
	for _, p := range parts {
		if p == "" || len(p) > 8 {
			return "", false
		}
	}
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	line := "110 Scene " + padRight(parts[0], 8) + " Take " + padRight(parts[1], 8) + " Cam Roll " + parts[2]
	return strings.TrimRight(line, " "), true
}

// flexTriple fits each channel into its column. Offsets reserve a sign
// position so that columns line up whether or not the value is negative.
func flexTriple(t cdl.Triple, signed bool) string {
	out := make([]string, 3)
	for i, v := range t {
		switch {
		case signed && v.IsNegative():
			out[i] = padRight(v.Fit(flexColumn+1), flexColumn+1)
		case signed:
			out[i] = " " + padRight(v.Fit(flexColumn), flexColumn)
		default:
			out[i] = padRight(v.Fit(flexColumn), flexColumn)
		}
	}
	return strings.Join(out, " ")
}
