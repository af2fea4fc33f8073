// Package svgchart renders the scatter plot to SVG with go-chart.
package svgchart

import (
	"context"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/render"
	"github.com/sells-group/healthplot/internal/scale"
	"github.com/sells-group/healthplot/internal/selection"
	"github.com/sells-group/healthplot/internal/tooltip"
)

// ErrNoSurface is returned when drawing without a mounted scene.
var ErrNoSurface = eris.New("svgchart: no surface mounted")

var (
	pointColor    = drawing.ColorFromHex("89bdd3")
	activeColor   = drawing.ColorBlack
	inactiveColor = drawing.ColorFromHex("aaaaaa")
	stateText     = drawing.ColorWhite
)

// Options configures the SVG engine.
type Options struct {
	PointRadius float64
	Title       string
}

// Engine keeps the live frame and writes it as SVG on demand. Transitions
// are not animated; the final frame is what gets written.
type Engine struct {
	mu    sync.Mutex
	opts  Options
	scene *render.Scene
}

var _ render.Engine = (*Engine)(nil)

// New returns an engine with no mounted surface.
func New(opts Options) *Engine {
	if opts.PointRadius <= 0 {
		opts.PointRadius = 10
	}
	return &Engine{opts: opts}
}

// Mount replaces any live frame with s.
func (e *Engine) Mount(_ context.Context, s render.Scene) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s.Scales = maps.Clone(s.Scales)
	s.Fields = maps.Clone(s.Fields)
	s.Labels = maps.Clone(s.Labels)
	e.scene = &s
	return nil
}

// Reposition moves axis to the new mapping.
func (e *Engine) Reposition(_ context.Context, axis model.Axis, m scale.Mapping, field model.FieldSpec, _ time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoSurface
	}
	e.scene.Apply(axis, m, field)
	return nil
}

// SetTooltip replaces the hover formatter.
func (e *Engine) SetTooltip(f tooltip.Formatter) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoSurface
	}
	e.scene.Tooltip = f
	return nil
}

// MarkLabels restyles the selector labels of axis.
func (e *Engine) MarkLabels(axis model.Axis, opts []selection.Option) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoSurface
	}
	e.scene.Labels[axis] = slices.Clone(opts)
	return nil
}

// Teardown drops the live frame.
func (e *Engine) Teardown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene = nil
	return nil
}

// Tooltips returns the hover text of every record in dataset order.
func (e *Engine) Tooltips() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return nil, ErrNoSurface
	}
	out := make([]string, len(e.scene.Records))
	for i, r := range e.scene.Records {
		out[i] = e.scene.Tooltip.Format(r)
	}
	return out, nil
}

// Render writes the live frame to w as SVG.
func (e *Engine) Render(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoSurface
	}
	ch := e.chart(*e.scene)
	if err := ch.Render(chart.SVG, w); err != nil {
		return eris.Wrap(err, "svgchart: render")
	}
	return nil
}

func (e *Engine) chart(s render.Scene) chart.Chart {
	xf, yf := s.Fields[model.AxisX], s.Fields[model.AxisY]
	xs := make([]float64, len(s.Records))
	ys := make([]float64, len(s.Records))
	notes := make([]chart.Value2, len(s.Records))
	for i, r := range s.Records {
		xs[i], ys[i] = xf.Value(r), yf.Value(r)
		notes[i] = chart.Value2{
			XValue: xs[i],
			YValue: ys[i],
			Label:  r.Abbr,
			Style: chart.Style{
				FontSize:    8,
				FontColor:   stateText,
				FillColor:   drawing.ColorTransparent,
				StrokeColor: drawing.ColorTransparent,
			},
		}
	}

	m := s.Viewport.Margin
	return chart.Chart{
		Title:  e.opts.Title,
		Width:  s.Viewport.Width,
		Height: s.Viewport.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: m.Top, Left: m.Left, Right: m.Right, Bottom: m.Bottom},
		},
		XAxis: chart.XAxis{
			Name:  xf.DisplayLabel,
			Range: axisRange(s.Scales[model.AxisX]),
			Ticks: ticks(s.Scales[model.AxisX]),
		},
		YAxis: chart.YAxis{
			Name:  yf.DisplayLabel,
			Range: axisRange(s.Scales[model.AxisY]),
			Ticks: ticks(s.Scales[model.AxisY]),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "states",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    e.opts.PointRadius,
					DotColor:    pointColor,
				},
			},
			chart.AnnotationSeries{Name: "abbr", Annotations: notes},
		},
		Elements: []chart.Renderable{selectorLabels(s.Labels)},
	}
}

// axisRange maps the scale domain onto a go-chart range. A degenerate
// domain is widened around its single value so marks sit mid-axis.
func axisRange(m scale.Mapping) *chart.ContinuousRange {
	lo, hi := m.Domain()
	if m.Degenerate() {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func ticks(m scale.Mapping) []chart.Tick {
	vals := m.Ticks(6)
	if len(vals) < 2 {
		return nil
	}
	out := make([]chart.Tick, len(vals))
	for i, v := range vals {
		out[i] = chart.Tick{Value: v, Label: tooltip.FormatValue(roundTick(v))}
	}
	return out
}

func roundTick(v float64) float64 {
	if v >= 100 || v <= -100 {
		return float64(int64(v))
	}
	return float64(int64(v*10)) / 10
}

// selectorLabels draws the three clickable field names per axis, the active
// one dark and the others grey.
func selectorLabels(labels map[model.Axis][]selection.Option) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		for i, o := range labels[model.AxisX] {
			st := labelStyle(o.Active).InheritFrom(defaults)
			st.WriteTextOptionsToRenderer(r)
			tb := r.MeasureText(o.Field.DisplayLabel)
			x := box.Left + (box.Width()-tb.Width())/2
			y := box.Bottom + 40 + i*14
			r.Text(o.Field.DisplayLabel, x, y)
		}
		for i, o := range labels[model.AxisY] {
			st := labelStyle(o.Active).InheritFrom(defaults)
			st.WriteTextOptionsToRenderer(r)
			tb := r.MeasureText(o.Field.DisplayLabel)
			r.SetTextRotation(-1.5707963267948966)
			x := box.Left - 80 + i*14
			y := box.Top + (box.Height()+tb.Width())/2
			r.Text(o.Field.DisplayLabel, x, y)
			r.ClearTextRotation()
		}
		r.ResetStyle()
	}
}

func labelStyle(active bool) chart.Style {
	col := inactiveColor
	if active {
		col = activeColor
	}
	return chart.Style{FontSize: 10, FontColor: col}
}
