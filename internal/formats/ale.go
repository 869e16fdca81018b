package formats

import (
	"fmt"
	"strings"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/textutil"
)

func init() {
	register(Codec{
		Format:     ALE,
		Title:      "Avid Log Exchange",
		Extensions: []string{".ale"},
		Precision:  cdl.AsGiven,
		Parse:      parseALE,
		Serialize:  serializeALE,
	})
}

const (
	aleSOP      = "ASC_SOP"
	aleSAT      = "ASC_SAT"
	aleScanFile = "Scan Filename"
	aleName     = "Name"
	aleSource   = "Source File"
)

type aleSection int

const (
	aleNone aleSection = iota
	aleHeading
	aleColumn
	aleData
)

// aleColumns maps the columns the parser cares about to their index, -1
// when absent.
type aleColumns struct {
	id, media, sop, sat int
}

func newALEColumns(header []string) (aleColumns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	find := func(names ...string) int {
		for _, n := range names {
			if i, ok := index[n]; ok {
				return i
			}
		}
		return -1
	}
	cols := aleColumns{
		id:    find(aleScanFile, aleName),
		media: find(aleSource, aleName),
		sop:   find(aleSOP),
		sat:   find(aleSAT),
	}
	if cols.id < 0 {
		return cols, &cdl.Error{Kind: cdl.ErrMalformedValue, Field: "Column", Detail: "no " + aleScanFile + " or " + aleName + " column"}
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseALE reads the Data rows of a log. Rows without color values refer to
// a correction by id and are resolved after the whole file is read.
func parseALE(raw []byte, pc ParseContext) (cdl.Model, error) {
	if err := emptyInput(raw); err != nil {
		return nil, err
	}
	list := cdl.NewDecisionList(pc.stem())
	var (
		section aleSection
		cols    *aleColumns
		made    int
	)
	for n, line := range splitLines(raw) {
		lineNo := n + 1
		switch strings.TrimSpace(line) {
		case "Heading":
			section = aleHeading
			continue
		case "Column":
			section = aleColumn
			continue
		case "Data":
			if cols == nil {
				return list, &cdl.Error{Kind: cdl.ErrMalformedValue, Line: lineNo, Detail: "Data section before Column header"}
			}
			section = aleData
			continue
		case "":
			continue
		}

		switch section {
		case aleHeading:
			key, value, _ := strings.Cut(line, "\t")
			list.Descriptions = append(list.Descriptions, strings.TrimSpace(key)+": "+strings.TrimSpace(value))
		case aleColumn:
			c, err := newALEColumns(strings.Split(line, "\t"))
			if err != nil {
				return list, lineError(err, lineNo)
			}
			cols = &c
			section = aleNone
		case aleData:
			row := strings.Split(line, "\t")
			id := textutil.SanitizeID(cell(row, cols.id))
			media := cell(row, cols.media)
			sopText, satText := cell(row, cols.sop), cell(row, cols.sat)

			if sopText == "" && satText == "" {
				if id != "" {
					list.AppendReference(id, media)
				}
				continue
			}
			var values sop
			if sopText != "" {
				v, err := parseSOPGroups(sopText)
				if err != nil {
					return list, lineError(err, lineNo)
				}
				values = v
			}
			if satText != "" {
				v, err := cdl.ParseScalar("saturation", satText)
				if err != nil {
					return list, lineError(err, lineNo)
				}
				values.sat = &v
			}
			if id == "" {
				id = fmt.Sprintf("%s%03d", pc.stem(), made+1)
			}
			cc, err := pc.build(id, values)
			if err != nil {
				return list, lineError(err, lineNo)
			}
			made++
			list.AppendCorrection(cc, media)
		}
	}
	if err := list.ResolveReferences(pc.Registry); err != nil {
		return list, err
	}
	return list, nil
}

// serializeALE writes one Data row per decision. A correction that already
// had a row is written again without values, which reads back as a
// reference.
func serializeALE(m cdl.Model, wo WriteOptions) (string, error) {
	if _, err := many(m); err != nil {
		return "", err
	}
	list := cdl.AsDecisionList(m)
	p := precisionFor(cdl.AsGiven, wo)

	var b strings.Builder
	b.WriteString("Heading\nFIELD_DELIM\tTABS\nVIDEO_FORMAT\t1080\nFPS\t24\n\n")
	b.WriteString("Column\n" + strings.Join([]string{aleName, aleScanFile, aleSOP, aleSAT}, "\t") + "\n\n")
	b.WriteString("Data\n")
	written := make(map[*cdl.ColorCorrection]bool, len(list.Decisions))
	for _, d := range list.Decisions {
		cc := d.Resolved()
		if cc == nil {
			return "", unresolved(d)
		}
		name := d.MediaRef
		if name == "" {
			name = cc.ID()
		}
		sopText, satText := "", ""
		if !written[cc] {
			sopText = "(" + cc.Slope().Render(p) + ")(" + cc.Offset().Render(p) + ")(" + cc.Power().Render(p) + ")"
			satText = cc.Saturation().Render(p)
			written[cc] = true
		}
		b.WriteString(strings.Join([]string{name, cc.ID(), sopText, satText}, "\t") + "\n")
	}
	return b.String(), nil
}
