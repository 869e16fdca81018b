package formats

import "cdlconvert/internal/cdl"

func init() {
	register(Codec{
		Format:     CDL,
		Title:      "ASC ColorDecisionList XML",
		Extensions: []string{".cdl"},
		Precision:  cdl.AsGiven,
		Parse:      parseCDL,
		Serialize:  serializeCDL,
	})
}

// parseCDL reads a decision list. References are resolved once the whole
// document has been read, so a decision may point at a correction defined
// further down.
func parseCDL(raw []byte, pc ParseContext) (cdl.Model, error) {
	root, err := decodeXML(raw)
	if err != nil {
		return nil, err
	}
	if !root.is("ColorDecisionList") {
		return nil, wrongRoot(root, "ColorDecisionList")
	}
	list := cdl.NewDecisionList(pc.stem())
	var listDesc descriptions
	defer func() { listDesc.applyMeta(&list.Metadata) }()

	for i := range root.Children {
		child := &root.Children[i]
		switch {
		case listDesc.take(child):
		case child.is("ColorCorrection"):
			cc, err := pc.correctionFromXML(child)
			if err != nil {
				return list, err
			}
			list.AppendCorrection(cc, "")
		case child.is("ColorDecision"):
			if err := pc.decisionFromXML(child, list); err != nil {
				return list, err
			}
		}
	}
	if err := list.ResolveReferences(pc.Registry); err != nil {
		return list, err
	}
	return list, nil
}

func (pc ParseContext) decisionFromXML(n *xmlNode, list *cdl.DecisionList) error {
	var (
		desc     descriptions
		mediaRef string
		cc       *cdl.ColorCorrection
		refID    string
	)
	for i := range n.Children {
		child := &n.Children[i]
		switch {
		case desc.take(child):
		case child.is("MediaRef"):
			mediaRef = child.attr("ref")
		case child.is("ColorCorrection"):
			var err error
			if cc, err = pc.correctionFromXML(child); err != nil {
				return err
			}
		case child.is("ColorCorrectionRef"):
			refID = child.attr("ref")
			if refID == "" {
				return &cdl.Error{Kind: cdl.ErrMissingIdentifier, Detail: "ColorCorrectionRef has no ref attribute"}
			}
		}
	}

	var d *cdl.Decision
	switch {
	case cc != nil:
		d = list.AppendCorrection(cc, mediaRef)
	case refID != "":
		d = list.AppendReference(refID, mediaRef)
	default:
		return &cdl.Error{Kind: cdl.ErrMalformedValue, Detail: "ColorDecision holds neither a ColorCorrection nor a ColorCorrectionRef"}
	}
	d.Descriptions = desc.list
	d.InputDescription = desc.input
	d.ViewingDescription = desc.viewing
	return nil
}

// serializeCDL writes every decision. A correction is written inline the
// first time it appears and as a ColorCorrectionRef afterwards, so the
// output never refers to a correction it does not define.
func serializeCDL(m cdl.Model, wo WriteOptions) (string, error) {
	if _, err := many(m); err != nil {
		return "", err
	}
	list := cdl.AsDecisionList(m)
	p := precisionFor(cdl.AsGiven, wo)

	w := newXMLWriter()
	w.open("ColorDecisionList", "xmlns", xmlNamespace)
	w.meta(list.Descriptions, list.InputDescription, list.ViewingDescription)
	written := make(map[*cdl.ColorCorrection]bool, len(list.Decisions))
	for _, d := range list.Decisions {
		cc := d.Resolved()
		if cc == nil {
			return "", unresolved(d)
		}
		w.open("ColorDecision")
		w.meta(d.Descriptions, d.InputDescription, d.ViewingDescription)
		if d.MediaRef != "" {
			w.empty("MediaRef", "ref", d.MediaRef)
		}
		if written[cc] {
			w.empty("ColorCorrectionRef", "ref", cc.ID())
		} else {
			w.correction(cc, p)
			written[cc] = true
		}
		w.close("ColorDecision")
	}
	w.close("ColorDecisionList")
	return w.String(), nil
}

func unresolved(d *cdl.Decision) error {
	e := &cdl.Error{Kind: cdl.ErrUnknownReference, Detail: "reference was never resolved"}
	if d.Ref != nil {
		e.ID = d.Ref.ID
	}
	return e
}
