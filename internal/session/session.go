// Package session runs the interactive terminal explorer: it feeds key
// presses to the axis controller and terminal resizes to a rebuild.
package session

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/healthplot/internal/controller"
	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/scale"
	"github.com/sells-group/healthplot/internal/viewport"
)

// Hoverer moves the tooltip focus of a mounted surface.
type Hoverer interface {
	Hover(delta int) error
	Hovered() (model.Record, bool)
}

// SizeFunc measures the current surface.
type SizeFunc func() (viewport.Viewport, error)

// Options wires a session to its terminal.
type Options struct {
	In     io.Reader
	Size   SizeFunc
	Resize <-chan struct{}
}

// Session is one interactive exploration of a dataset.
type Session struct {
	ID string

	ctrl     *controller.Controller
	hover    Hoverer
	bindings map[rune]Binding
	opts     Options
	log      *zap.Logger
	mounted  bool
}

// New builds a session around a controller whose engine is hover.
func New(ctrl *controller.Controller, catalog *model.Catalog, hover Hoverer, opts Options, log *zap.Logger) *Session {
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	if log == nil {
		log = zap.L()
	}
	id := uuid.NewString()
	return &Session{
		ID:       id,
		ctrl:     ctrl,
		hover:    hover,
		bindings: Bindings(catalog),
		opts:     opts,
		log:      log.With(zap.String("session_id", id)),
	}
}

// Run mounts the chart and processes input until the user quits, the input
// ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	vp, err := s.opts.Size()
	if err != nil {
		return eris.Wrap(err, "session: measure surface")
	}
	switch err := s.ctrl.Mount(ctx, vp); {
	case errors.Is(err, viewport.ErrTooSmall):
		s.log.Warn("terminal too small, waiting for resize", zap.Int("width", vp.Width), zap.Int("height", vp.Height))
	case err != nil:
		return eris.Wrap(err, "session: mount")
	default:
		s.mounted = true
	}
	s.log.Info("session started", zap.Int("width", vp.Width), zap.Int("height", vp.Height), zap.Bool("mounted", s.mounted))

	done := make(chan struct{})
	defer close(done)
	keys, readErr := s.readKeys(done)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session cancelled")
			return nil
		case _, ok := <-s.opts.Resize:
			if !ok {
				s.opts.Resize = nil
				continue
			}
			if err := s.Resize(ctx); err != nil {
				return err
			}
		case k, ok := <-keys:
			if !ok {
				if err := <-readErr; err != nil && !errors.Is(err, io.EOF) {
					return eris.Wrap(err, "session: read input")
				}
				s.log.Info("session input closed")
				return nil
			}
			quit, err := s.Handle(ctx, k)
			if err != nil {
				return err
			}
			if quit {
				s.log.Info("session ended")
				return nil
			}
		}
	}
}

func (s *Session) readKeys(done <-chan struct{}) (<-chan Key, <-chan error) {
	keys := make(chan Key, 16)
	errCh := make(chan error, 1)
	go func() {
		defer close(keys)
		defer close(errCh)
		r := bufio.NewReader(s.opts.In)
		for {
			k, err := ReadKey(r)
			if err != nil {
				errCh <- err
				return
			}
			select {
			case keys <- k:
			case <-done:
				return
			}
		}
	}()
	return keys, errCh
}

// Handle applies one key press. It reports whether the session should end.
func (s *Session) Handle(ctx context.Context, k Key) (bool, error) {
	if isQuit(k) {
		return true, nil
	}
	if !s.mounted {
		return false, nil
	}
	if d := hoverDelta(k); d != 0 {
		if err := s.hover.Hover(d); err != nil {
			return false, eris.Wrap(err, "session: hover")
		}
		if rec, ok := s.hover.Hovered(); ok {
			s.log.Debug("hover", zap.String("state", rec.Abbr))
		}
		return false, nil
	}
	if k.Code != KeyRune {
		return false, nil
	}
	b, ok := s.bindings[k.Rune]
	if !ok {
		return false, nil
	}

	changed, err := s.ctrl.Click(ctx, b.Axis, b.Field)
	var invalid *scale.InvalidDatasetError
	if errors.As(err, &invalid) {
		// field has no plottable values; selection is unchanged
		s.log.Warn("field not plottable", zap.String("field", string(b.Field)), zap.Error(err))
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "session: select %s", b.Field)
	}
	if changed {
		s.log.Debug("selection changed", zap.String("axis", string(b.Axis)), zap.String("field", string(b.Field)))
	}
	return false, nil
}

// Resize re-measures the surface and rebuilds the chart with default
// selections.
func (s *Session) Resize(ctx context.Context) error {
	vp, err := s.opts.Size()
	if err != nil {
		return eris.Wrap(err, "session: measure surface")
	}
	err = s.ctrl.Resize(ctx, vp)
	s.mounted = err == nil
	if err != nil {
		if errors.Is(err, viewport.ErrTooSmall) {
			s.log.Warn("terminal too small, waiting for resize", zap.Int("width", vp.Width), zap.Int("height", vp.Height))
			return nil
		}
		return eris.Wrap(err, "session: resize")
	}
	return nil
}
