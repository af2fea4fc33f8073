// Package selection holds which field drives each plot axis.
package selection

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/healthplot/internal/model"
)

// ErrUnknownField is returned when a key is not selectable on the axis.
var ErrUnknownField = eris.New("selection: unknown field for axis")

// Option is one selector label and whether it is the active one.
type Option struct {
	Field  model.FieldSpec
	Active bool
}

// PlotSelection is the (x, y) pair of active field keys.
type PlotSelection struct {
	X model.FieldKey `json:"x" yaml:"x"`
	Y model.FieldKey `json:"y" yaml:"y"`
}

// State tracks the active field of each axis. Each axis always has exactly
// one active field.
type State struct {
	catalog *model.Catalog
	active  map[model.Axis]model.FieldKey
}

// New returns a state seeded with the catalog defaults.
func New(catalog *model.Catalog) *State {
	s := &State{
		catalog: catalog,
		active:  make(map[model.Axis]model.FieldKey, len(model.Axes)),
	}
	for _, a := range model.Axes {
		s.active[a] = catalog.Default(a).Key
	}
	return s
}

// SetActive makes key the active field of axis. It reports false without
// touching anything when key is already active.
func (s *State) SetActive(axis model.Axis, key model.FieldKey) (bool, error) {
	f := s.catalog.ByKey(key)
	if f == nil || f.Axis != axis {
		return false, eris.Wrapf(ErrUnknownField, "%s on axis %s", key, axis)
	}
	if s.active[axis] == key {
		return false, nil
	}
	s.active[axis] = key
	return true, nil
}

// Active returns the field currently driving axis.
func (s *State) Active(axis model.Axis) model.FieldSpec {
	return *s.catalog.ByKey(s.active[axis])
}

// Options lists the axis' fields in selector order with their active mark.
func (s *State) Options(axis model.Axis) []Option {
	fields := s.catalog.ForAxis(axis)
	out := make([]Option, len(fields))
	for i, f := range fields {
		out[i] = Option{Field: f, Active: f.Key == s.active[axis]}
	}
	return out
}

// Snapshot returns the current (x, y) selection.
func (s *State) Snapshot() PlotSelection {
	return PlotSelection{X: s.active[model.AxisX], Y: s.active[model.AxisY]}
}
