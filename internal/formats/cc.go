package formats

import "cdlconvert/internal/cdl"

func init() {
	register(Codec{
		Format:     CC,
		Title:      "ASC ColorCorrection XML",
		Extensions: []string{".cc"},
		Single:     true,
		Precision:  cdl.AsGiven,
		Parse:      parseCC,
		Serialize:  serializeCC,
	})
}

func parseCC(raw []byte, pc ParseContext) (cdl.Model, error) {
	root, err := decodeXML(raw)
	if err != nil {
		return nil, err
	}
	if !root.is("ColorCorrection") {
		return nil, wrongRoot(root, "ColorCorrection")
	}
	cc, err := pc.correctionFromXML(root)
	if err != nil {
		return nil, err
	}
	col := cdl.NewCollection(pc.stem())
	col.Append(cc)
	return col, nil
}

func serializeCC(m cdl.Model, wo WriteOptions) (string, error) {
	cc, err := single(m)
	if err != nil {
		return "", err
	}
	w := newXMLWriter()
	w.correction(cc, precisionFor(cdl.AsGiven, wo))
	return w.String(), nil
}
