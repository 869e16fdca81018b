package formats

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/logging"
	"cdlconvert/internal/textutil"
)

// Format names one supported file format.
type Format string

const (
	NK   Format = "nk"
	CC   Format = "cc"
	CDL  Format = "cdl"
	CCC  Format = "ccc"
	ALE  Format = "ale"
	FLEx Format = "flex"
	RCDL Format = "rcdl"
)

// ParseContext carries what a parser needs beyond the raw text.
type ParseContext struct {
	Registry *cdl.Registry
	// Source is the input path or name. Its stem seeds ids for formats that
	// do not carry one per correction.
	Source string
	// Halt turns recoverable value problems (negative slope, power or
	// saturation) into errors instead of clamping them to zero.
	Halt   bool
	Logger *slog.Logger
	// OnClamp is called with the correction id and field of every value
	// raised to zero. It may be nil.
	OnClamp func(id, field string)
}

// WriteOptions tunes serialization.
type WriteOptions struct {
	// Precision overrides the format's default numeral rendering when set.
	Precision *cdl.Precision
}

// ParseFunc reads raw text into the canonical model.
type ParseFunc func(raw []byte, pc ParseContext) (cdl.Model, error)

// SerializeFunc renders a model in one format.
type SerializeFunc func(m cdl.Model, wo WriteOptions) (string, error)

// Codec describes one format.
type Codec struct {
	Format     Format
	Title      string
	Extensions []string
	// Single formats hold exactly one correction per file.
	Single bool
	// Precision is the default numeral rendering.
	Precision cdl.Precision
	// Columns is the fixed numeral width of column-addressed formats, 0 otherwise.
	Columns   int
	Parse     ParseFunc
	Serialize SerializeFunc
}

// PrecisionLabel describes how the codec renders numerals.
func (c Codec) PrecisionLabel() string {
	if c.Columns > 0 {
		return "fit-" + strconv.Itoa(c.Columns)
	}
	return c.Precision.String()
}

// Ext returns the preferred file extension, without the dot.
func (c Codec) Ext() string {
	if len(c.Extensions) == 0 {
		return string(c.Format)
	}
	return strings.TrimPrefix(c.Extensions[0], ".")
}

var codecs = map[Format]Codec{}

func register(c Codec) {
	codecs[c.Format] = c
}

// Lookup returns the codec for a format name. Names are case-insensitive.
func Lookup(name string) (Codec, error) {
	key := Format(strings.ToLower(strings.TrimSpace(name)))
	c, ok := codecs[key]
	if !ok {
		return Codec{}, &cdl.Error{Kind: cdl.ErrUnknownFormat, Format: name, Detail: "supported formats are " + strings.Join(Names(), ", ")}
	}
	return c, nil
}

// All returns every codec ordered by name.
func All() []Codec {
	out := make([]Codec, 0, len(codecs))
	for _, c := range codecs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Format < out[j].Format })
	return out
}

// Names returns every format name ordered alphabetically.
func Names() []string {
	all := All()
	out := make([]string, len(all))
	for i, c := range all {
		out[i] = string(c.Format)
	}
	return out
}

// Detect infers the format of path from its extension. A ".cdl" file whose
// content does not start with an XML tag is the space separated variant.
// data may be nil when the content is not available yet.
func Detect(path string, data []byte) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".cdl" && data != nil {
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] != '<' {
			return RCDL, nil
		}
		return CDL, nil
	}
	for _, c := range All() {
		for _, e := range c.Extensions {
			if e == ext {
				return c.Format, nil
			}
		}
	}
	return "", &cdl.Error{Kind: cdl.ErrUnknownFormat, Source: path, Detail: "cannot infer format from extension " + quoteExt(ext)}
}

// Parse looks up format and parses raw with it.
func Parse(format Format, raw []byte, pc ParseContext) (cdl.Model, error) {
	c, err := Lookup(string(format))
	if err != nil {
		return nil, err
	}
	m, err := c.Parse(raw, pc)
	if err != nil {
		return m, cdl.Annotate(err, string(c.Format), pc.Source)
	}
	return m, nil
}

// Serialize looks up format and renders m with it.
func Serialize(format Format, m cdl.Model, wo WriteOptions) (string, error) {
	c, err := Lookup(string(format))
	if err != nil {
		return "", err
	}
	out, err := c.Serialize(m, wo)
	if err != nil {
		return "", cdl.Annotate(err, string(c.Format), m.Meta().Name)
	}
	return out, nil
}

func quoteExt(ext string) string {
	if ext == "" {
		return "(none)"
	}
	return ext
}

func (pc ParseContext) stem() string {
	return textutil.FileStem(pc.Source)
}

func (pc ParseContext) logger() *slog.Logger {
	return logging.NewComponentLogger(pc.Logger, "parser")
}

// sop collects the optional values a format read for one correction.
type sop struct {
	slope, offset, power *cdl.Triple
	sat                  *cdl.Value
}

var sopGroup = regexp.MustCompile(`\(([^()]*)\)`)

// parseSOPGroups reads the "(s s s)(o o o)(p p p)" notation shared by the
// edit log formats.
func parseSOPGroups(text string) (sop, error) {
	groups := sopGroup.FindAllStringSubmatch(text, -1)
	if len(groups) != 3 {
		return sop{}, &cdl.Error{Kind: cdl.ErrMalformedValue, Field: "ASC_SOP", Detail: "expected three parenthesised groups, got " + strconv.Quote(text)}
	}
	var out sop
	for i, field := range []string{"slope", "offset", "power"} {
		t, err := cdl.ParseTriple(field, strings.Fields(groups[i][1]))
		if err != nil {
			return sop{}, err
		}
		switch i {
		case 0:
			out.slope = &t
		case 1:
			out.offset = &t
		default:
			out.power = &t
		}
	}
	return out, nil
}

// splitLines splits raw into lines without their terminators.
func splitLines(raw []byte) []string {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return strings.Split(strings.ReplaceAll(text, "\r", "\n"), "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// build registers a correction under id and applies the values that were
// present. Negative slope, power and saturation are clamped unless Halt is set.
func (pc ParseContext) build(id string, values sop) (*cdl.ColorCorrection, error) {
	cc, err := cdl.NewColorCorrection(pc.Registry, id)
	if err != nil {
		return nil, err
	}
	cc.Source = pc.Source
	if values.slope != nil {
		if err := pc.setClamped(cc, "slope", *values.slope, cc.SetSlope); err != nil {
			return cc, err
		}
	}
	if values.offset != nil {
		_ = cc.SetOffset(*values.offset)
	}
	if values.power != nil {
		if err := pc.setClamped(cc, "power", *values.power, cc.SetPower); err != nil {
			return cc, err
		}
	}
	if values.sat != nil {
		sat := *values.sat
		if err := cc.SetSaturation(sat); err != nil {
			if pc.Halt {
				return cc, err
			}
			pc.warnClamped(cc.ID(), "saturation", sat.String())
			_ = cc.SetSaturation(sat.Clamp())
		}
	}
	return cc, nil
}

func (pc ParseContext) setClamped(cc *cdl.ColorCorrection, field string, t cdl.Triple, set func(cdl.Triple) error) error {
	err := set(t)
	if err == nil {
		return nil
	}
	if pc.Halt {
		return err
	}
	pc.warnClamped(cc.ID(), field, t.String())
	return set(t.Clamp())
}

func (pc ParseContext) warnClamped(id, field, value string) {
	if pc.OnClamp != nil {
		pc.OnClamp(id, field)
	}
	logging.WarnWithContext(pc.logger(), "negative value clamped to zero", "value_clamped",
		logging.String(logging.FieldCorrectionID, id),
		logging.String("field", field),
		logging.String("value", value),
		logging.String(logging.FieldErrorHint, "rerun with --halt to reject negative values"),
		logging.String(logging.FieldImpact, "converted grade differs from the source"),
	)
}

func precisionFor(c cdl.Precision, wo WriteOptions) cdl.Precision {
	if wo.Precision != nil {
		return *wo.Precision
	}
	return c
}

// checkIDs rejects corrections that cannot be serialized without an id.
func checkIDs(ccs []*cdl.ColorCorrection) error {
	for i, cc := range ccs {
		if cc.ID() == "" {
			return &cdl.Error{Kind: cdl.ErrMissingIdentifier, Detail: "correction " + strconv.Itoa(i+1) + " has no id"}
		}
	}
	return nil
}

// single returns the only correction in m, or a cardinality error.
func single(m cdl.Model) (*cdl.ColorCorrection, error) {
	ccs := m.Corrections()
	switch len(ccs) {
	case 0:
		return nil, &cdl.Error{Kind: cdl.ErrEmptyInput, Detail: "nothing to write"}
	case 1:
		if err := checkIDs(ccs); err != nil {
			return nil, err
		}
		return ccs[0], nil
	default:
		return nil, &cdl.Error{Kind: cdl.ErrUnsupportedCardinality, Detail: "format holds one correction, model has " + strconv.Itoa(len(ccs))}
	}
}

// many returns every correction in m, rejecting empty models and missing ids.
func many(m cdl.Model) ([]*cdl.ColorCorrection, error) {
	ccs := m.Corrections()
	if len(ccs) == 0 {
		return nil, &cdl.Error{Kind: cdl.ErrEmptyInput, Detail: "nothing to write"}
	}
	if err := checkIDs(ccs); err != nil {
		return nil, err
	}
	return ccs, nil
}

func emptyInput(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &cdl.Error{Kind: cdl.ErrEmptyInput, Detail: "input is empty"}
	}
	return nil
}
