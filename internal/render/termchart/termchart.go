// Package termchart draws the scatter plot on an ANSI terminal, one
// character cell per chart pixel.
package termchart

import (
	"context"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/render"
	"github.com/sells-group/healthplot/internal/scale"
	"github.com/sells-group/healthplot/internal/selection"
	"github.com/sells-group/healthplot/internal/tooltip"
)

const clearScreen = "\033[H\033[2J"

// ErrNoSurface is returned when drawing without a mounted scene.
var ErrNoSurface = eris.New("termchart: no surface mounted")

// Options configures the terminal engine.
type Options struct {
	// Frames is how many steps a reposition animates over.
	Frames int
}

// Engine redraws the whole screen on every change.
type Engine struct {
	mu     sync.Mutex
	out    io.Writer
	opts   Options
	scene  *render.Scene
	points []render.Point
	hover  int
}

var _ render.Engine = (*Engine)(nil)

// New returns an engine writing frames to out.
func New(out io.Writer, opts Options) *Engine {
	if opts.Frames <= 0 {
		opts.Frames = 12
	}
	return &Engine{out: out, opts: opts}
}

// Mount clears the screen and draws s.
func (e *Engine) Mount(_ context.Context, s render.Scene) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s.Scales = maps.Clone(s.Scales)
	s.Fields = maps.Clone(s.Fields)
	s.Labels = maps.Clone(s.Labels)
	e.scene = &s
	e.points = render.Place(s)
	if e.hover >= len(e.points) {
		e.hover = 0
	}
	return e.draw()
}

// Reposition animates the marks of axis from their current cells to the
// cells of the new mapping over d.
func (e *Engine) Reposition(ctx context.Context, axis model.Axis, m scale.Mapping, field model.FieldSpec, d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoSurface
	}

	from := slices.Clone(e.points)
	e.scene.Apply(axis, m, field)
	to := render.Place(*e.scene)

	frames := e.opts.Frames
	if d <= 0 {
		frames = 1
	}
	step := d / time.Duration(frames)
	for i := 1; i <= frames; i++ {
		t := float64(i) / float64(frames)
		e.points = interpolate(from, to, axis, t)
		if err := e.draw(); err != nil {
			return err
		}
		if i < frames {
			if err := wait(ctx, step); err != nil {
				// settle on the final frame
				e.points = to
				_ = e.draw()
				return nil
			}
		}
	}
	e.points = to
	return nil
}

// SetTooltip replaces the hover formatter and redraws.
func (e *Engine) SetTooltip(f tooltip.Formatter) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoSurface
	}
	e.scene.Tooltip = f
	return e.draw()
}

// MarkLabels restyles the selector labels of axis and redraws.
func (e *Engine) MarkLabels(axis model.Axis, opts []selection.Option) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoSurface
	}
	e.scene.Labels[axis] = slices.Clone(opts)
	return e.draw()
}

// Teardown clears the screen and drops the scene.
func (e *Engine) Teardown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene = nil
	e.points = nil
	_, err := io.WriteString(e.out, clearScreen)
	return err
}

// Hover moves the tooltip focus by delta records, wrapping around.
func (e *Engine) Hover(delta int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoSurface
	}
	n := len(e.points)
	if n == 0 {
		return nil
	}
	e.hover = ((e.hover+delta)%n + n) % n
	return e.draw()
}

// Hovered returns the record under focus.
func (e *Engine) Hovered() (model.Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil || len(e.points) == 0 {
		return model.Record{}, false
	}
	return e.points[e.hover].Record, true
}

func (e *Engine) draw() error {
	frame := Frame(*e.scene, e.points, e.hover)
	_, err := io.WriteString(e.out, clearScreen+frame)
	return err
}

func interpolate(from, to []render.Point, axis model.Axis, t float64) []render.Point {
	out := make([]render.Point, len(to))
	for i := range to {
		out[i] = to[i]
		if i >= len(from) {
			continue
		}
		if axis == model.AxisX {
			out[i].X = from[i].X + (to[i].X-from[i].X)*t
		} else {
			out[i].Y = from[i].Y + (to[i].Y-from[i].Y)*t
		}
	}
	return out
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type grid [][]rune

func newGrid(w, h int) grid {
	g := make(grid, h)
	for i := range g {
		g[i] = []rune(strings.Repeat(" ", w))
	}
	return g
}

func (g grid) put(row, col int, s string) {
	if row < 0 || row >= len(g) {
		return
	}
	for i, r := range []rune(s) {
		c := col + i
		if c >= 0 && c < len(g[row]) {
			g[row][c] = r
		}
	}
}

// Frame renders one screen: plot area with axes, state abbreviations at
// their cells, selector labels and the tooltip of the hovered record.
func Frame(s render.Scene, pts []render.Point, hover int) string {
	vp := s.Viewport
	g := newGrid(vp.Width, vp.Height)
	left, top := vp.Margin.Left, vp.Margin.Top
	cw, chh := vp.ChartWidth(), vp.ChartHeight()

	// axes
	for r := top; r <= top+chh; r++ {
		g.put(r, left-1, "|")
	}
	g.put(top+chh, left-1, "+"+strings.Repeat("-", cw))

	// readouts: the value under the first, middle and last cell of each axis
	xm, ym := s.Scales[model.AxisX], s.Scales[model.AxisY]
	for i, col := range []int{0, cw / 2, cw} {
		label := readout(xm, col)
		at := left + col
		switch i {
		case 1:
			at -= len(label) / 2
		case 2:
			at -= len(label)
		}
		g.put(top+chh+1, at, label)
	}
	for _, row := range []int{0, chh / 2, chh - 1} {
		g.put(top+row, 0, trim(readout(ym, row), left-1))
	}

	for i, p := range pts {
		row := top + clamp(int(math.Round(p.Y)), 0, chh-1)
		col := left + clamp(int(math.Round(p.X)), 0, cw-1)
		label := p.Record.Abbr
		if label == "" {
			label = "o"
		}
		if i == hover {
			label = "*" + label
		}
		g.put(row, col, label)
	}

	base := top + chh + 2
	g.put(base, 0, selectorLine("X", 1, s.Labels[model.AxisX]))
	g.put(base+1, 0, selectorLine("Y", 4, s.Labels[model.AxisY]))
	if hover >= 0 && hover < len(pts) && s.Tooltip.X.Value != nil && s.Tooltip.Y.Value != nil {
		g.put(base+2, 0, strings.Join(s.Tooltip.Lines(pts[hover].Record), " | "))
	}

	lines := make([]string, len(g))
	for i, row := range g {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\r\n")
}

func selectorLine(axis string, firstKey int, opts []selection.Option) string {
	var b strings.Builder
	b.WriteString(axis + ":")
	for i, o := range opts {
		mark := " "
		if o.Active {
			mark = "*"
		}
		fmt.Fprintf(&b, " %d[%s] %s", firstKey+i, mark, o.Field.DisplayLabel)
	}
	return b.String()
}

func readout(m scale.Mapping, cell int) string {
	return tooltip.FormatValue(round1(m.Invert(float64(cell))))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

func trim(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
