package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/healthplot/internal/controller"
	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/render/termchart"
	"github.com/sells-group/healthplot/internal/viewport"
)

var records = []model.Record{
	{State: "Alabama", Abbr: "AL", Poverty: 19.3, Age: 38.6, Income: 42830, Healthcare: 13.9, Smokes: 21.1, Obesity: 33.5},
	{State: "Alaska", Abbr: "AK", Poverty: 11.2, Age: 33.3, Income: 71583, Healthcare: 15, Smokes: 19.9, Obesity: 29.7},
	{State: "Arizona", Abbr: "AZ", Poverty: 18.2, Age: 36.9, Income: 50068, Healthcare: 14.4, Smokes: 16.5, Obesity: 28.9},
}

type fixture struct {
	out    *bytes.Buffer
	engine *termchart.Engine
	ctrl   *controller.Controller
	size   *viewport.Viewport
}

func newFixture(t *testing.T, recs []model.Record) *fixture {
	t.Helper()
	f := &fixture{out: &bytes.Buffer{}}
	f.engine = termchart.New(f.out, termchart.Options{Frames: 1})
	ctrl, err := controller.New(recs, nil, f.engine, controller.Options{}, zap.NewNop())
	require.NoError(t, err)
	f.ctrl = ctrl
	vp := viewport.New(80, 24, viewport.TerminalMargin)
	f.size = &vp
	return f
}

func (f *fixture) session(in string, resize <-chan struct{}) *Session {
	return New(f.ctrl, nil, f.engine, Options{
		In:     strings.NewReader(in),
		Size:   func() (viewport.Viewport, error) { return *f.size, nil },
		Resize: resize,
	}, zap.NewNop())
}

func lastFrame(out string) string {
	parts := strings.Split(out, "\033[H\033[2J")
	return parts[len(parts)-1]
}

func TestRun_KeysDriveSelection(t *testing.T) {
	f := newFixture(t, records)
	s := f.session("35\x1b[C", nil)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, model.FieldIncome, f.ctrl.Selection().X)
	assert.Equal(t, model.FieldSmokes, f.ctrl.Selection().Y)
	frame := lastFrame(f.out.String())
	assert.Contains(t, frame, "X: 1[ ] In Poverty (%) 2[ ] Age (Median) 3[*] Household Income (Median)")
	assert.Contains(t, frame, "Y: 4[ ] Lacks Healthcare (%) 5[*] Smokes (%) 6[ ] Obese (%)")
	assert.Contains(t, frame, "Alaska | Household Income: 71583 | Smokes: 19.9")
}

func TestRun_QuitStopsReading(t *testing.T) {
	f := newFixture(t, records)
	s := f.session("q3", nil)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, model.FieldPoverty, f.ctrl.Selection().X)
}

func TestRun_CancelledContext(t *testing.T) {
	f := newFixture(t, records)
	pr, pw := io.Pipe()
	defer pw.Close() //nolint:errcheck

	s := New(f.ctrl, nil, f.engine, Options{
		In:   pr,
		Size: func() (viewport.Viewport, error) { return *f.size, nil },
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx))
}

func TestRun_TooSmallAtStartWaits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, records)
	*f.size = viewport.New(5, 5, viewport.TerminalMargin)
	s := f.session("2q", nil)

	require.NoError(t, s.Run(ctx))
	assert.Empty(t, f.out.String())
	assert.Equal(t, model.FieldPoverty, f.ctrl.Selection().X)

	*f.size = viewport.New(80, 24, viewport.TerminalMargin)
	require.NoError(t, s.Resize(ctx))
	_, err := s.Handle(ctx, Key{Code: KeyRune, Rune: '2'})
	require.NoError(t, err)
	assert.Equal(t, model.FieldAge, f.ctrl.Selection().X)
}

func TestRun_SizeFailure(t *testing.T) {
	f := newFixture(t, records)
	s := New(f.ctrl, nil, f.engine, Options{
		In:   strings.NewReader("q"),
		Size: func() (viewport.Viewport, error) { return viewport.Viewport{}, errors.New("not a tty") },
	}, zap.NewNop())

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a tty")
}

func TestResize_ResetsSelection(t *testing.T) {
	f := newFixture(t, records)
	s := f.session("", nil)
	require.NoError(t, f.ctrl.Mount(context.Background(), *f.size))
	s.mounted = true

	_, err := s.Handle(context.Background(), Key{Code: KeyRune, Rune: '2'})
	require.NoError(t, err)
	assert.Equal(t, model.FieldAge, f.ctrl.Selection().X)

	*f.size = viewport.New(100, 30, viewport.TerminalMargin)
	require.NoError(t, s.Resize(context.Background()))
	assert.Equal(t, model.FieldPoverty, f.ctrl.Selection().X)
	assert.Len(t, strings.Split(lastFrame(f.out.String()), "\r\n"), 30)
}

func TestResize_TooSmallWaits(t *testing.T) {
	f := newFixture(t, records)
	s := f.session("", nil)
	require.NoError(t, f.ctrl.Mount(context.Background(), *f.size))
	s.mounted = true

	*f.size = viewport.New(6, 4, viewport.TerminalMargin)
	require.NoError(t, s.Resize(context.Background()))

	// keys are ignored until a usable size arrives
	quit, err := s.Handle(context.Background(), Key{Code: KeyRune, Rune: '2'})
	require.NoError(t, err)
	assert.False(t, quit)
	quit, err = s.Handle(context.Background(), Key{Code: KeyRight})
	require.NoError(t, err)
	assert.False(t, quit)

	*f.size = viewport.New(80, 24, viewport.TerminalMargin)
	require.NoError(t, s.Resize(context.Background()))
	_, err = s.Handle(context.Background(), Key{Code: KeyRune, Rune: '2'})
	require.NoError(t, err)
	assert.Equal(t, model.FieldAge, f.ctrl.Selection().X)
}

func TestHandle_NonFiniteFieldKeepsSelection(t *testing.T) {
	recs := append([]model.Record(nil), records...)
	recs[1].Obesity = math.NaN()
	f := newFixture(t, recs)
	s := f.session("", nil)
	require.NoError(t, f.ctrl.Mount(context.Background(), *f.size))
	s.mounted = true

	quit, err := s.Handle(context.Background(), Key{Code: KeyRune, Rune: '6'})
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, model.FieldHealthcare, f.ctrl.Selection().Y)
}

func TestHandle_IgnoresUnboundKeys(t *testing.T) {
	f := newFixture(t, records)
	s := f.session("", nil)
	require.NoError(t, f.ctrl.Mount(context.Background(), *f.size))
	s.mounted = true
	before := f.out.Len()

	for _, k := range []Key{{Code: KeyRune, Rune: '9'}, {Code: KeyRune, Rune: 'z'}, {Code: KeyEnter}, {Code: KeyUnknown}} {
		quit, err := s.Handle(context.Background(), k)
		require.NoError(t, err)
		assert.False(t, quit)
	}
	assert.Equal(t, before, f.out.Len())
}

func TestNew_SessionID(t *testing.T) {
	f := newFixture(t, records)
	a, b := f.session("", nil), f.session("", nil)
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestHandle_HoverLogsFocusedState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, records)
	core, logs := observer.New(zap.DebugLevel)
	s := New(f.ctrl, nil, f.engine, Options{}, zap.New(core))
	require.NoError(t, f.ctrl.Mount(ctx, *f.size))
	s.mounted = true

	_, err := s.Handle(ctx, Key{Code: KeyRight})
	require.NoError(t, err)

	hovers := logs.FilterMessage("hover").All()
	require.Len(t, hovers, 1)
	assert.Equal(t, "AK", hovers[0].ContextMap()["state"])
}
