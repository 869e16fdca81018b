package cdl

// ColorCorrection is one slope/offset/power/saturation grade.
//
// The id is claimed in the Registry passed to NewColorCorrection and stays
// claimed until the registry is reset or the id is changed with SetID.
// Values are only changed through setters, which validate the touched field.
type ColorCorrection struct {
	reg *Registry
	id  string

	slope  Triple
	offset Triple
	power  Triple
	sat    Value

	// Source is the path the correction was read from, if any.
	Source string

	Descriptions       []string
	InputDescription   string
	ViewingDescription string
	SOPDescriptions    []string
	SatDescriptions    []string
}

// NewColorCorrection creates an identity grade and registers id in reg.
// An empty id is allowed here but rejected when the correction is serialized.
func NewColorCorrection(reg *Registry, id string) (*ColorCorrection, error) {
	cc := &ColorCorrection{
		reg:    reg,
		slope:  DefaultSlope(),
		offset: DefaultOffset(),
		power:  DefaultPower(),
		sat:    DefaultSaturation(),
	}
	if reg != nil {
		if err := reg.Register(id, cc); err != nil {
			return nil, err
		}
	}
	cc.id = id
	return cc, nil
}

// ID returns the correction id.
func (c *ColorCorrection) ID() string { return c.id }

// SetID renames the correction. The new id is claimed before the old one is
// released, so a duplicate leaves the correction unchanged.
func (c *ColorCorrection) SetID(id string) error {
	if id == c.id {
		return nil
	}
	if c.reg != nil {
		if err := c.reg.Register(id, c); err != nil {
			return err
		}
		if c.id != "" {
			c.reg.Unregister(c.id)
		}
	}
	c.id = id
	return nil
}

func (c *ColorCorrection) Slope() Triple { return c.slope }

func (c *ColorCorrection) Offset() Triple { return c.offset }

func (c *ColorCorrection) Power() Triple { return c.power }

func (c *ColorCorrection) Saturation() Value { return c.sat }

// Registry returns the registry that holds the correction id.
func (c *ColorCorrection) Registry() *Registry { return c.reg }

// SetSlope replaces the slope. Negative channels are rejected.
func (c *ColorCorrection) SetSlope(t Triple) error {
	if t.HasNegative() {
		return c.negative("slope", t.String())
	}
	c.slope = t
	return nil
}

// SetOffset replaces the offset. Offsets may be negative.
func (c *ColorCorrection) SetOffset(t Triple) error {
	c.offset = t
	return nil
}

// SetPower replaces the power. Negative channels are rejected.
func (c *ColorCorrection) SetPower(t Triple) error {
	if t.HasNegative() {
		return c.negative("power", t.String())
	}
	c.power = t
	return nil
}

// SetSaturation replaces the saturation. Negative values are rejected.
func (c *ColorCorrection) SetSaturation(v Value) error {
	if v.IsNegative() {
		return c.negative("saturation", v.String())
	}
	c.sat = v
	return nil
}

// IsIdentity reports whether the grade leaves pixels unchanged.
func (c *ColorCorrection) IsIdentity() bool {
	return c.slope.Equal(DefaultSlope()) &&
		c.offset.Equal(DefaultOffset()) &&
		c.power.Equal(DefaultPower()) &&
		c.sat.Equal(DefaultSaturation())
}

func (c *ColorCorrection) negative(field, value string) error {
	return &Error{
		Kind:   ErrMalformedValue,
		ID:     c.id,
		Field:  field,
		Detail: "negative values are not allowed (" + value + ")",
	}
}
