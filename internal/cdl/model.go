package cdl

// Model is the result of parsing any format: a Collection or a DecisionList.
type Model interface {
	// Corrections returns every distinct correction in source order.
	Corrections() []*ColorCorrection
	// Meta returns the document-level name and descriptions.
	Meta() *Metadata
}

// Metadata is shared by collections and decision lists.
type Metadata struct {
	Name               string
	Descriptions       []string
	InputDescription   string
	ViewingDescription string
}

// Collection is an ordered set of corrections, the shape of a correction
// library file.
type Collection struct {
	Metadata
	children []*ColorCorrection
}

// NewCollection returns an empty collection called name.
func NewCollection(name string) *Collection {
	return &Collection{Metadata: Metadata{Name: name}}
}

// Append adds corrections in order.
func (c *Collection) Append(ccs ...*ColorCorrection) {
	c.children = append(c.children, ccs...)
}

// AllChildren returns the contained corrections in insertion order. The
// returned slice is a copy.
func (c *Collection) AllChildren() []*ColorCorrection {
	out := make([]*ColorCorrection, len(c.children))
	copy(out, c.children)
	return out
}

// Len returns the number of corrections.
func (c *Collection) Len() int { return len(c.children) }

// Corrections implements Model.
func (c *Collection) Corrections() []*ColorCorrection { return c.AllChildren() }

// Meta implements Model.
func (c *Collection) Meta() *Metadata { return &c.Metadata }

// Reference points at a correction by id without owning it.
type Reference struct {
	ID     string
	target *ColorCorrection
}

// Resolve looks the id up in reg and remembers the target.
func (r *Reference) Resolve(reg *Registry) (*ColorCorrection, error) {
	if r.target != nil {
		return r.target, nil
	}
	if reg != nil {
		if cc, ok := reg.Lookup(r.ID); ok {
			r.target = cc
			return cc, nil
		}
	}
	return nil, &Error{Kind: ErrUnknownReference, ID: r.ID, Detail: "no correction with this id has been read"}
}

// Target returns the resolved correction, or nil before Resolve succeeds.
func (r *Reference) Target() *ColorCorrection { return r.target }

// Decision is one entry of a DecisionList. Exactly one of Correction and Ref
// is set.
type Decision struct {
	Correction *ColorCorrection
	Ref        *Reference

	MediaRef           string
	Descriptions       []string
	InputDescription   string
	ViewingDescription string
}

// Resolved returns the correction the decision applies, owned or referenced.
func (d *Decision) Resolved() *ColorCorrection {
	if d.Correction != nil {
		return d.Correction
	}
	if d.Ref != nil {
		return d.Ref.target
	}
	return nil
}

// DecisionList is an ordered list of decisions, the shape of edit logs and
// list XML documents.
type DecisionList struct {
	Metadata
	Decisions []*Decision
}

// NewDecisionList returns an empty list called name.
func NewDecisionList(name string) *DecisionList {
	return &DecisionList{Metadata: Metadata{Name: name}}
}

// AppendCorrection adds a decision that owns cc.
func (l *DecisionList) AppendCorrection(cc *ColorCorrection, mediaRef string) *Decision {
	d := &Decision{Correction: cc, MediaRef: mediaRef}
	l.Decisions = append(l.Decisions, d)
	return d
}

// AppendReference adds a decision that refers to id.
func (l *DecisionList) AppendReference(id, mediaRef string) *Decision {
	d := &Decision{Ref: &Reference{ID: id}, MediaRef: mediaRef}
	l.Decisions = append(l.Decisions, d)
	return d
}

// ResolveReferences resolves every reference through reg. The first unknown
// id is returned as an error; earlier references stay resolved.
func (l *DecisionList) ResolveReferences(reg *Registry) error {
	for _, d := range l.Decisions {
		if d.Ref == nil {
			continue
		}
		if _, err := d.Ref.Resolve(reg); err != nil {
			return err
		}
	}
	return nil
}

// Corrections implements Model. A correction referenced by several
// decisions is returned once, at its first position.
func (l *DecisionList) Corrections() []*ColorCorrection {
	seen := make(map[*ColorCorrection]struct{}, len(l.Decisions))
	out := make([]*ColorCorrection, 0, len(l.Decisions))
	for _, d := range l.Decisions {
		cc := d.Resolved()
		if cc == nil {
			continue
		}
		if _, ok := seen[cc]; ok {
			continue
		}
		seen[cc] = struct{}{}
		out = append(out, cc)
	}
	return out
}

// Meta implements Model.
func (l *DecisionList) Meta() *Metadata { return &l.Metadata }

// AsCollection returns m as a collection. Collections are returned as-is;
// other models are flattened into a new collection sharing their metadata.
func AsCollection(m Model) *Collection {
	if c, ok := m.(*Collection); ok {
		return c
	}
	out := &Collection{Metadata: *m.Meta()}
	out.Append(m.Corrections()...)
	return out
}

// AsDecisionList returns m as a decision list. Collections become one owned
// decision per correction.
func AsDecisionList(m Model) *DecisionList {
	if l, ok := m.(*DecisionList); ok {
		return l
	}
	out := &DecisionList{Metadata: *m.Meta()}
	for _, cc := range m.Corrections() {
		out.AppendCorrection(cc, "")
	}
	return out
}

// Merge combines models into one collection named name, keeping order and
// dropping repeated corrections.
func Merge(name string, models ...Model) *Collection {
	out := NewCollection(name)
	seen := make(map[*ColorCorrection]struct{})
	for _, m := range models {
		meta := m.Meta()
		out.Descriptions = append(out.Descriptions, meta.Descriptions...)
		if out.InputDescription == "" {
			out.InputDescription = meta.InputDescription
		}
		if out.ViewingDescription == "" {
			out.ViewingDescription = meta.ViewingDescription
		}
		for _, cc := range m.Corrections() {
			if _, ok := seen[cc]; ok {
				continue
			}
			seen[cc] = struct{}{}
			out.Append(cc)
		}
	}
	return out
}
