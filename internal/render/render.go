// Package render defines the drawing surface the interaction controller drives.
package render

import (
	"context"
	"time"

	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/scale"
	"github.com/sells-group/healthplot/internal/selection"
	"github.com/sells-group/healthplot/internal/tooltip"
	"github.com/sells-group/healthplot/internal/viewport"
)

// Scene is everything needed to build a surface from scratch.
type Scene struct {
	Viewport viewport.Viewport
	Records  []model.Record
	Scales   map[model.Axis]scale.Mapping
	Fields   map[model.Axis]model.FieldSpec
	Labels   map[model.Axis][]selection.Option
	Tooltip  tooltip.Formatter
}

// Engine draws and updates the scatter plot.
type Engine interface {
	// Mount tears down any live surface and builds a new one for s.
	Mount(ctx context.Context, s Scene) error

	// Reposition moves every mark bound to axis to the new mapping of field.
	// The move settles within d.
	Reposition(ctx context.Context, axis model.Axis, m scale.Mapping, field model.FieldSpec, d time.Duration) error

	// SetTooltip replaces the hover formatter.
	SetTooltip(f tooltip.Formatter) error

	// MarkLabels restyles the selector labels of axis.
	MarkLabels(axis model.Axis, opts []selection.Option) error

	// Teardown discards the live surface.
	Teardown() error
}

// Point is a record positioned on the chart area.
type Point struct {
	Record model.Record
	X, Y   float64
}

// Place positions every record with the scene's scales.
func Place(s Scene) []Point {
	xm, ym := s.Scales[model.AxisX], s.Scales[model.AxisY]
	xf, yf := s.Fields[model.AxisX], s.Fields[model.AxisY]
	pts := make([]Point, len(s.Records))
	for i, r := range s.Records {
		pts[i] = Point{Record: r, X: xm.Map(xf.Value(r)), Y: ym.Map(yf.Value(r))}
	}
	return pts
}

// Apply updates the scene in place for a repositioned axis.
func (s *Scene) Apply(axis model.Axis, m scale.Mapping, field model.FieldSpec) {
	s.Scales[axis] = m
	s.Fields[axis] = field
}
