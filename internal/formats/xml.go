package formats

import (
	"bytes"
	"encoding/xml"
	"strings"

	"cdlconvert/internal/cdl"
)

const (
	xmlHeader    = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	xmlNamespace = "urn:ASC:CDL:v1.01"
	xmlIndent    = "    "
)

// xmlNode is a generic element tree. The ASC documents in circulation vary
// in element case and nesting, so matching is done by hand on the tree
// rather than through struct tags.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

func decodeXML(raw []byte) (*xmlNode, error) {
	if err := emptyInput(raw); err != nil {
		return nil, err
	}
	var root xmlNode
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, &cdl.Error{Kind: cdl.ErrMalformedValue, Detail: "invalid XML", Err: err}
	}
	return &root, nil
}

// is reports whether the element's local name matches one of names,
// ignoring case.
func (n *xmlNode) is(names ...string) bool {
	for _, name := range names {
		if strings.EqualFold(n.XMLName.Local, name) {
			return true
		}
	}
	return false
}

func (n *xmlNode) attr(name string) string {
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func (n *xmlNode) text() string {
	return strings.TrimSpace(n.Content)
}

var (
	sopAliases = []string{"SOPNode", "ASC_SOP"}
	satAliases = []string{"SatNode", "ASC_SAT"}
)

// descriptions collects the description elements that may appear at any
// level of a document.
type descriptions struct {
	list    []string
	input   string
	viewing string
}

// take consumes n when it is a description element.
func (d *descriptions) take(n *xmlNode) bool {
	switch {
	case n.is("Description"):
		if t := n.text(); t != "" {
			d.list = append(d.list, t)
		}
	case n.is("InputDescription"):
		if t := n.text(); t != "" {
			d.input = t
		}
	case n.is("ViewingDescription"):
		if t := n.text(); t != "" {
			d.viewing = t
		}
	default:
		return false
	}
	return true
}

func (d *descriptions) applyMeta(m *cdl.Metadata) {
	m.Descriptions = append(m.Descriptions, d.list...)
	if d.input != "" {
		m.InputDescription = d.input
	}
	if d.viewing != "" {
		m.ViewingDescription = d.viewing
	}
}

// correctionFromXML interprets a ColorCorrection element.
func (pc ParseContext) correctionFromXML(n *xmlNode) (*cdl.ColorCorrection, error) {
	id := n.attr("id")
	if id == "" {
		return nil, &cdl.Error{Kind: cdl.ErrMissingIdentifier, Detail: "ColorCorrection element has no id attribute"}
	}

	var values sop
	var desc descriptions
	var sopDescs, satDescs []string
	for i := range n.Children {
		child := &n.Children[i]
		switch {
		case desc.take(child):
		case child.is(sopAliases...):
			for j := range child.Children {
				g := &child.Children[j]
				var err error
				switch {
				case g.is("Description"):
					if t := g.text(); t != "" {
						sopDescs = append(sopDescs, t)
					}
				case desc.take(g):
				case g.is("Slope"):
					values.slope, err = xmlTriple("slope", g)
				case g.is("Offset"):
					values.offset, err = xmlTriple("offset", g)
				case g.is("Power"):
					values.power, err = xmlTriple("power", g)
				}
				if err != nil {
					return nil, withID(err, id)
				}
			}
		case child.is(satAliases...):
			for j := range child.Children {
				g := &child.Children[j]
				switch {
				case g.is("Description"):
					if t := g.text(); t != "" {
						satDescs = append(satDescs, t)
					}
				case desc.take(g):
				case g.is("Saturation"):
					v, err := xmlScalar("saturation", g)
					if err != nil {
						return nil, withID(err, id)
					}
					values.sat = v
				}
			}
		}
	}

	cc, err := pc.build(id, values)
	if err != nil {
		return nil, err
	}
	cc.Descriptions = desc.list
	cc.InputDescription = desc.input
	cc.ViewingDescription = desc.viewing
	cc.SOPDescriptions = sopDescs
	cc.SatDescriptions = satDescs
	return cc, nil
}

// xmlTriple parses a Slope, Offset or Power element. Empty elements keep
// the default.
func xmlTriple(field string, n *xmlNode) (*cdl.Triple, error) {
	fields := strings.Fields(n.Content)
	if len(fields) == 0 {
		return nil, nil
	}
	t, err := cdl.ParseTriple(field, fields)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func xmlScalar(field string, n *xmlNode) (*cdl.Value, error) {
	fields := strings.Fields(n.Content)
	switch len(fields) {
	case 0:
		return nil, nil
	case 1:
		v, err := cdl.ParseScalar(field, fields[0])
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, &cdl.Error{Kind: cdl.ErrMalformedValue, Field: field, Detail: "expected a single value, got " + n.text()}
	}
}

func withID(err error, id string) error {
	if ce, ok := err.(*cdl.Error); ok && ce.ID == "" {
		ce.ID = id
	}
	return err
}

func wrongRoot(n *xmlNode, want string) error {
	return &cdl.Error{Kind: cdl.ErrMalformedValue, Detail: "root element is " + n.XMLName.Local + ", expected " + want}
}

// xmlWriter renders indented ASC XML.
type xmlWriter struct {
	b     strings.Builder
	depth int
}

func newXMLWriter() *xmlWriter {
	w := &xmlWriter{}
	w.b.WriteString(xmlHeader)
	return w
}

func (w *xmlWriter) indent() {
	for i := 0; i < w.depth; i++ {
		w.b.WriteString(xmlIndent)
	}
}

// open writes a start tag. attrs are name/value pairs.
func (w *xmlWriter) open(name string, attrs ...string) {
	w.indent()
	w.tag(name, attrs)
	w.b.WriteString(">\n")
	w.depth++
}

func (w *xmlWriter) close(name string) {
	w.depth--
	w.indent()
	w.b.WriteString("</" + name + ">\n")
}

func (w *xmlWriter) leaf(name, text string) {
	w.indent()
	w.b.WriteString("<" + name + ">")
	w.b.WriteString(escapeXML(text))
	w.b.WriteString("</" + name + ">\n")
}

// empty writes a self-closing element with attributes.
func (w *xmlWriter) empty(name string, attrs ...string) {
	w.indent()
	w.tag(name, attrs)
	w.b.WriteString("/>\n")
}

func (w *xmlWriter) tag(name string, attrs []string) {
	w.b.WriteByte('<')
	w.b.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		w.b.WriteString(" " + attrs[i] + `="` + escapeXML(attrs[i+1]) + `"`)
	}
}

func (w *xmlWriter) meta(descs []string, input, viewing string) {
	for _, d := range descs {
		w.leaf("Description", d)
	}
	if input != "" {
		w.leaf("InputDescription", input)
	}
	if viewing != "" {
		w.leaf("ViewingDescription", viewing)
	}
}

func (w *xmlWriter) correction(cc *cdl.ColorCorrection, p cdl.Precision) {
	w.open("ColorCorrection", "id", cc.ID())
	w.meta(cc.Descriptions, cc.InputDescription, cc.ViewingDescription)
	w.open("SOPNode")
	for _, d := range cc.SOPDescriptions {
		w.leaf("Description", d)
	}
	w.leaf("Slope", cc.Slope().Render(p))
	w.leaf("Offset", cc.Offset().Render(p))
	w.leaf("Power", cc.Power().Render(p))
	w.close("SOPNode")
	w.open("SatNode")
	for _, d := range cc.SatDescriptions {
		w.leaf("Description", d)
	}
	w.leaf("Saturation", cc.Saturation().Render(p))
	w.close("SatNode")
	w.close("ColorCorrection")
}

func (w *xmlWriter) String() string { return w.b.String() }

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
