// Package controller implements the axis-selection state machine: it turns
// selector-label clicks into scale recomputation and surface updates.
package controller

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/render"
	"github.com/sells-group/healthplot/internal/scale"
	"github.com/sells-group/healthplot/internal/selection"
	"github.com/sells-group/healthplot/internal/tooltip"
	"github.com/sells-group/healthplot/internal/viewport"
)

// ErrNotMounted is returned by Click before the first Mount.
var ErrNotMounted = eris.New("controller: surface not mounted")

// MaxTransition bounds how long a reposition may animate.
const MaxTransition = 10 * time.Second

// DefaultTransition is the reposition animation length.
const DefaultTransition = time.Second

// Options configures a Controller.
type Options struct {
	Padding    scale.Padding
	Transition time.Duration
}

// Controller owns the plot selection and the per-axis scales of one session.
type Controller struct {
	mu sync.Mutex

	records []model.Record
	catalog *model.Catalog
	engine  render.Engine
	opts    Options
	log     *zap.Logger

	mounted  bool
	viewport viewport.Viewport
	state    *selection.State
	scales   map[model.Axis]scale.Mapping
	tooltip  tooltip.Formatter
}

// New validates the dataset and options. Nothing is drawn until Mount.
func New(records []model.Record, catalog *model.Catalog, engine render.Engine, opts Options, log *zap.Logger) (*Controller, error) {
	if len(records) == 0 {
		return nil, &scale.InvalidDatasetError{Reason: "no records"}
	}
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	if opts.Padding == (scale.Padding{}) {
		opts.Padding = scale.DefaultPadding
	}
	if err := opts.Padding.Validate(); err != nil {
		return nil, err
	}
	switch {
	case opts.Transition < 0:
		opts.Transition = 0
	case opts.Transition > MaxTransition:
		opts.Transition = MaxTransition
	}
	if log == nil {
		log = zap.L()
	}
	return &Controller{
		records: records,
		catalog: catalog,
		engine:  engine,
		opts:    opts,
		log:     log,
	}, nil
}

// Mount builds the session state from scratch for vp and asks the engine for
// a fresh surface.
func (c *Controller) Mount(ctx context.Context, vp viewport.Viewport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mount(ctx, vp)
}

// Resize discards the surface and all selection state and rebuilds for vp.
func (c *Controller) Resize(ctx context.Context, vp viewport.Viewport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mounted {
		if err := c.engine.Teardown(); err != nil {
			return eris.Wrap(err, "controller: teardown")
		}
		c.mounted = false
	}
	c.log.Debug("resize", zap.Int("width", vp.Width), zap.Int("height", vp.Height))
	return c.mount(ctx, vp)
}

func (c *Controller) mount(ctx context.Context, vp viewport.Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}

	state := selection.New(c.catalog)
	scales := make(map[model.Axis]scale.Mapping, len(model.Axes))
	fields := make(map[model.Axis]model.FieldSpec, len(model.Axes))
	labels := make(map[model.Axis][]selection.Option, len(model.Axes))
	for _, a := range model.Axes {
		f := state.Active(a)
		m, err := c.compute(vp, a, f)
		if err != nil {
			return err
		}
		scales[a] = m
		fields[a] = f
		labels[a] = state.Options(a)
	}
	tip := tooltip.New(fields[model.AxisX], fields[model.AxisY])

	scene := render.Scene{
		Viewport: vp,
		Records:  c.records,
		Scales:   scales,
		Fields:   fields,
		Labels:   labels,
		Tooltip:  tip,
	}
	if err := c.engine.Mount(ctx, scene); err != nil {
		return eris.Wrap(err, "controller: mount surface")
	}

	c.viewport = vp
	c.state = state
	c.scales = maps.Clone(scales)
	c.tooltip = tip
	c.mounted = true

	c.log.Debug("mounted",
		zap.Int("records", len(c.records)),
		zap.String("x", string(fields[model.AxisX].Key)),
		zap.String("y", string(fields[model.AxisY].Key)),
	)
	return nil
}

// Click applies a selector-label click on axis for key. It returns false,
// with no recomputation and no engine call, when key is already active. When
// the engine rejects the update the previous selection is kept and false is
// returned with the error.
func (c *Controller) Click(ctx context.Context, axis model.Axis, key model.FieldKey) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted {
		return false, ErrNotMounted
	}

	prev := c.state.Active(axis)
	changed, err := c.state.SetActive(axis, key)
	if err != nil || !changed {
		return false, err
	}

	field := c.state.Active(axis)
	m, err := c.compute(c.viewport, axis, field)
	if err != nil {
		// keep selection and scales consistent
		_, _ = c.state.SetActive(axis, prev.Key)
		return false, err
	}

	tip := c.tooltip.With(axis, field)
	if err := c.apply(ctx, axis, m, field, tip); err != nil {
		_, _ = c.state.SetActive(axis, prev.Key)
		c.restore(ctx, axis, prev)
		return false, err
	}
	c.scales[axis] = m
	c.tooltip = tip

	lo, hi := m.Domain()
	c.log.Debug("axis changed",
		zap.String("axis", string(axis)),
		zap.String("field", string(key)),
		zap.Float64("domain_min", lo),
		zap.Float64("domain_max", hi),
	)
	return true, nil
}

// apply pushes one axis change to the engine. Selection state must already
// reflect field.
func (c *Controller) apply(ctx context.Context, axis model.Axis, m scale.Mapping, field model.FieldSpec, tip tooltip.Formatter) error {
	if err := c.engine.Reposition(ctx, axis, m, field, c.opts.Transition); err != nil {
		return eris.Wrapf(err, "controller: reposition %s", axis)
	}
	if err := c.engine.SetTooltip(tip); err != nil {
		return eris.Wrap(err, "controller: set tooltip")
	}
	if err := c.engine.MarkLabels(axis, c.state.Options(axis)); err != nil {
		return eris.Wrapf(err, "controller: mark %s labels", axis)
	}
	return nil
}

// restore redraws axis with the committed scale, tooltip and labels after a
// failed apply. The surface may have taken part of the change.
func (c *Controller) restore(ctx context.Context, axis model.Axis, field model.FieldSpec) {
	if err := c.apply(ctx, axis, c.scales[axis], field, c.tooltip); err != nil {
		c.log.Warn("surface not restored after failed update",
			zap.String("axis", string(axis)),
			zap.Error(err),
		)
	}
}

func (c *Controller) compute(vp viewport.Viewport, axis model.Axis, f model.FieldSpec) (scale.Mapping, error) {
	var lo, hi float64
	if axis == model.AxisX {
		lo, hi = vp.XRange()
	} else {
		lo, hi = vp.YRange()
	}
	m, err := scale.Compute(c.records, f, lo, hi, c.opts.Padding)
	if err != nil {
		return scale.Mapping{}, err
	}
	if m.Degenerate() {
		c.log.Warn("degenerate scale domain, plotting at midpoint",
			zap.String("axis", string(axis)),
			zap.String("field", string(f.Key)),
		)
	}
	return m, nil
}

// Selection returns the active (x, y) pair.
func (c *Controller) Selection() selection.PlotSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return selection.New(c.catalog).Snapshot()
	}
	return c.state.Snapshot()
}

// Scale returns the current mapping of axis.
func (c *Controller) Scale(axis model.Axis) scale.Mapping {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scales[axis]
}

// Tooltip returns the current hover formatter.
func (c *Controller) Tooltip() tooltip.Formatter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltip
}

// Options returns the selector labels of axis with their active marks.
func (c *Controller) Options(axis model.Axis) []selection.Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return selection.New(c.catalog).Options(axis)
	}
	return c.state.Options(axis)
}

// Records returns the dataset the controller plots.
func (c *Controller) Records() []model.Record {
	return c.records
}
