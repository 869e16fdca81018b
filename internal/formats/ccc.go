package formats

import "cdlconvert/internal/cdl"

func init() {
	register(Codec{
		Format:     CCC,
		Title:      "ASC ColorCorrectionCollection XML",
		Extensions: []string{".ccc"},
		Precision:  cdl.AsGiven,
		Parse:      parseCCC,
		Serialize:  serializeCCC,
	})
}

// parseCCC reads a collection. Corrections read before a failing one stay
// in the returned collection and in the registry.
func parseCCC(raw []byte, pc ParseContext) (cdl.Model, error) {
	root, err := decodeXML(raw)
	if err != nil {
		return nil, err
	}
	if !root.is("ColorCorrectionCollection") {
		return nil, wrongRoot(root, "ColorCorrectionCollection")
	}
	col := cdl.NewCollection(pc.stem())
	var desc descriptions
	for i := range root.Children {
		child := &root.Children[i]
		switch {
		case desc.take(child):
		case child.is("ColorCorrection"):
			cc, err := pc.correctionFromXML(child)
			if err != nil {
				desc.applyMeta(&col.Metadata)
				return col, err
			}
			col.Append(cc)
		}
	}
	desc.applyMeta(&col.Metadata)
	return col, nil
}

func serializeCCC(m cdl.Model, wo WriteOptions) (string, error) {
	ccs, err := many(m)
	if err != nil {
		return "", err
	}
	p := precisionFor(cdl.AsGiven, wo)
	meta := m.Meta()
	w := newXMLWriter()
	w.open("ColorCorrectionCollection", "xmlns", xmlNamespace)
	w.meta(meta.Descriptions, meta.InputDescription, meta.ViewingDescription)
	for _, cc := range ccs {
		w.correction(cc, p)
	}
	w.close("ColorCorrectionCollection")
	return w.String(), nil
}
