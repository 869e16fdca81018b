package formats

import (
	"strconv"
	"strings"
	"unicode"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/textutil"
)

func init() {
	register(Codec{
		Format:     NK,
		Title:      "Nuke OCIOCDLTransform nodes",
		Extensions: []string{".nk"},
		Precision:  cdl.AsGiven,
		Parse:      parseNK,
		Serialize:  serializeNK,
	})
}

// nkBlock is one OCIOCDLTransform node as read from a script.
type nkBlock struct {
	line   int
	name   string
	values sop
}

// nkToken is a word, quoted string or brace from a node script.
type nkToken struct {
	text string
	line int
}

// tokenizeNK splits a node script into words and braces. Braces are always
// their own token, so blocks may span lines or sit on one. Quoted strings
// stay whole, braces inside them included.
func tokenizeNK(raw []byte) []nkToken {
	var (
		toks  []nkToken
		word  strings.Builder
		line  = 1
		start int
	)
	flush := func() {
		if word.Len() > 0 {
			toks = append(toks, nkToken{text: word.String(), line: start})
			word.Reset()
		}
	}
	inQuote, escaped := false, false
	for _, r := range string(raw) {
		if inQuote {
			word.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inQuote = false
			}
			if r == '\n' {
				line++
			}
			continue
		}
		switch {
		case r == '{' || r == '}':
			flush()
			toks = append(toks, nkToken{text: string(r), line: line})
		case unicode.IsSpace(r):
			flush()
		default:
			if word.Len() == 0 {
				start = line
			}
			if r == '"' {
				inQuote = true
			}
			word.WriteRune(r)
		}
		if r == '\n' {
			line++
		}
	}
	flush()
	return toks
}

// matchBrace returns the index just past the brace closing toks[open], or
// len(toks) when it is never closed.
func matchBrace(toks []nkToken, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].text {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(toks)
}

func joinTokens(toks []nkToken) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}

// parseNK scans a node script for OCIOCDLTransform blocks. Other nodes are
// skipped whole, including any nested braces they contain.
func parseNK(raw []byte, pc ParseContext) (cdl.Model, error) {
	if err := emptyInput(raw); err != nil {
		return nil, err
	}
	col := cdl.NewCollection(pc.stem())
	toks := tokenizeNK(raw)

	count := 0
	for i := 0; i < len(toks); {
		switch {
		case toks[i].text == "{":
			i = matchBrace(toks, i)
		case toks[i].text == cdl.NodeKeyword && i+1 < len(toks) && toks[i+1].text == "{":
			count++
			block, next, err := readNKBlock(toks, i)
			if err != nil {
				return col, err
			}
			cc, err := pc.nkCorrection(block, count)
			if err != nil {
				return col, lineError(err, block.line)
			}
			col.Append(cc)
			i = next
		default:
			i++
		}
	}
	if count == 0 {
		return nil, &cdl.Error{Kind: cdl.ErrNoNodesFound, Detail: cdl.NoNodesMessage}
	}
	return col, nil
}

// readNKBlock reads the knobs of the block whose keyword is toks[at]. Each
// knob is a name followed by one word or one braced group.
func readNKBlock(toks []nkToken, at int) (*nkBlock, int, error) {
	block := &nkBlock{line: toks[at].line}
	for i := at + 2; i < len(toks); {
		key := toks[i]
		switch key.text {
		case "}":
			return block, i + 1, nil
		case "{":
			i = matchBrace(toks, i)
			continue
		}
		i++
		var value string
		if i < len(toks) {
			switch toks[i].text {
			case "}":
			case "{":
				end := matchBrace(toks, i)
				value = joinTokens(toks[i:end])
				i = end
			default:
				value = toks[i].text
				i++
			}
		}
		if err := block.readKnob(key.text, value); err != nil {
			return block, i, lineError(err, key.line)
		}
	}
	return block, len(toks), &cdl.Error{Kind: cdl.ErrMalformedValue, Line: block.line, Detail: cdl.NodeKeyword + " block is never closed"}
}

func (b *nkBlock) readKnob(key, value string) error {
	switch key {
	case "slope", "offset", "power":
		t, err := nkComponent(key, value)
		if err != nil {
			return err
		}
		switch key {
		case "slope":
			b.values.slope = &t
		case "offset":
			b.values.offset = &t
		default:
			b.values.power = &t
		}
	case "saturation":
		if err := rejectAnimated(key, value); err != nil {
			return err
		}
		v, err := cdl.ParseScalar(key, value)
		if err != nil {
			return err
		}
		b.values.sat = &v
	case "name":
		b.name = strings.Trim(value, `"`)
	}
	return nil
}

// nkComponent reads "{r g b}" or a single number broadcast to all channels.
func nkComponent(field, text string) (cdl.Triple, error) {
	if err := rejectAnimated(field, text); err != nil {
		return cdl.Triple{}, err
	}
	text = strings.TrimSuffix(strings.TrimPrefix(text, "{"), "}")
	c, err := cdl.ParseComponent(field, strings.Fields(text))
	if err != nil {
		return cdl.Triple{}, err
	}
	return c.Triple(), nil
}

func rejectAnimated(field, text string) error {
	if strings.Contains(text, "curve") || strings.ContainsAny(text, "[]") {
		return &cdl.Error{Kind: cdl.ErrNumericFormat, Field: field, Detail: "animated or expression values are not supported (" + text + ")"}
	}
	return nil
}

func (pc ParseContext) nkCorrection(b *nkBlock, index int) (*cdl.ColorCorrection, error) {
	name := b.name
	if name == "" {
		name = cdl.NodeKeyword + strconv.Itoa(index)
	}
	return pc.build(pc.stem()+"."+name, b.values)
}

func lineError(err error, line int) error {
	if ce, ok := err.(*cdl.Error); ok && ce.Line == 0 {
		ce.Line = line
	}
	return err
}

func serializeNK(m cdl.Model, wo WriteOptions) (string, error) {
	ccs, err := many(m)
	if err != nil {
		return "", err
	}
	p := precisionFor(cdl.AsGiven, wo)
	var b strings.Builder
	for _, cc := range ccs {
		b.WriteString(cdl.NodeKeyword + " {\n")
		b.WriteString(" slope {" + cc.Slope().Render(p) + "}\n")
		b.WriteString(" offset {" + cc.Offset().Render(p) + "}\n")
		b.WriteString(" power {" + cc.Power().Render(p) + "}\n")
		b.WriteString(" saturation " + cc.Saturation().Render(p) + "\n")
		b.WriteString(" name " + textutil.NodeName(cc.ID()) + "\n")
		b.WriteString("}\n")
	}
	return b.String(), nil
}
