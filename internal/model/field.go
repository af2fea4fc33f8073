package model

import (
	"github.com/rotisserie/eris"
)

// FieldSpec describes one selectable plotting dimension.
type FieldSpec struct {
	Key          FieldKey `json:"key" yaml:"key"`
	Axis         Axis     `json:"axis" yaml:"axis"`
	DisplayLabel string   `json:"display_label" yaml:"display_label"`
	TooltipLabel string   `json:"tooltip_label" yaml:"tooltip_label"`
	Default      bool     `json:"default" yaml:"default"`

	// Value reads this field from a record.
	Value func(Record) float64 `json:"-" yaml:"-"`
}

// Catalog is an ordered, indexed collection of field specs.
type Catalog struct {
	Fields   []FieldSpec
	byKey    map[FieldKey]*FieldSpec
	byAxis   map[Axis][]FieldSpec
	defaults map[Axis]FieldSpec
}

// NewCatalog indexes fields by key and axis. Every axis must carry exactly
// one default field, keys must be unique and every field needs an accessor.
func NewCatalog(fields []FieldSpec) (*Catalog, error) {
	c := &Catalog{
		Fields:   fields,
		byKey:    make(map[FieldKey]*FieldSpec, len(fields)),
		byAxis:   make(map[Axis][]FieldSpec, len(Axes)),
		defaults: make(map[Axis]FieldSpec, len(Axes)),
	}
	for i := range c.Fields {
		f := &c.Fields[i]
		if !f.Axis.Valid() {
			return nil, eris.Errorf("model: field %q has unknown axis %q", f.Key, f.Axis)
		}
		if f.Value == nil {
			return nil, eris.Errorf("model: field %q has no accessor", f.Key)
		}
		if _, dup := c.byKey[f.Key]; dup {
			return nil, eris.Errorf("model: duplicate field %q", f.Key)
		}
		c.byKey[f.Key] = f
		c.byAxis[f.Axis] = append(c.byAxis[f.Axis], *f)
		if f.Default {
			if prev, ok := c.defaults[f.Axis]; ok {
				return nil, eris.Errorf("model: axis %s has two defaults (%s, %s)", f.Axis, prev.Key, f.Key)
			}
			c.defaults[f.Axis] = *f
		}
	}
	for _, a := range Axes {
		if _, ok := c.defaults[a]; !ok {
			return nil, eris.Errorf("model: axis %s has no default field", a)
		}
	}
	return c, nil
}

// ByKey returns the field spec for the given key, or nil if not found.
func (c *Catalog) ByKey(key FieldKey) *FieldSpec {
	return c.byKey[key]
}

// ForAxis returns the fields selectable on the axis, in catalog order.
func (c *Catalog) ForAxis(a Axis) []FieldSpec {
	return c.byAxis[a]
}

// Default returns the field active on the axis when a session starts.
func (c *Catalog) Default(a Axis) FieldSpec {
	return c.defaults[a]
}

// LabelFor returns the tooltip prefix for key, or "" for an unknown key.
func (c *Catalog) LabelFor(key FieldKey) string {
	if f := c.byKey[key]; f != nil {
		return f.TooltipLabel
	}
	return ""
}

// DefaultFields returns the six survey columns in selector order.
func DefaultFields() []FieldSpec {
	return []FieldSpec{
		{Key: FieldPoverty, Axis: AxisX, DisplayLabel: "In Poverty (%)", TooltipLabel: "Poverty: ", Default: true,
			Value: func(r Record) float64 { return r.Poverty }},
		{Key: FieldAge, Axis: AxisX, DisplayLabel: "Age (Median)", TooltipLabel: "Age: ",
			Value: func(r Record) float64 { return r.Age }},
		{Key: FieldIncome, Axis: AxisX, DisplayLabel: "Household Income (Median)", TooltipLabel: "Household Income: ",
			Value: func(r Record) float64 { return r.Income }},
		{Key: FieldHealthcare, Axis: AxisY, DisplayLabel: "Lacks Healthcare (%)", TooltipLabel: "Healthcare: ", Default: true,
			Value: func(r Record) float64 { return r.Healthcare }},
		{Key: FieldSmokes, Axis: AxisY, DisplayLabel: "Smokes (%)", TooltipLabel: "Smokes: ",
			Value: func(r Record) float64 { return r.Smokes }},
		{Key: FieldObesity, Axis: AxisY, DisplayLabel: "Obese (%)", TooltipLabel: "Obesity: ",
			Value: func(r Record) float64 { return r.Obesity }},
	}
}

// DefaultCatalog returns the catalog of the six survey columns.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultFields())
	if err != nil {
		panic(err) // static table
	}
	return c
}
