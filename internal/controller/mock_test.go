package controller

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/healthplot/internal/model"
	"github.com/sells-group/healthplot/internal/render"
	"github.com/sells-group/healthplot/internal/scale"
	"github.com/sells-group/healthplot/internal/selection"
	"github.com/sells-group/healthplot/internal/tooltip"
)

type repositionCall struct {
	axis     model.Axis
	mapping  scale.Mapping
	field    model.FieldKey
	duration time.Duration
}

// mockEngine implements render.Engine for testing.
type mockEngine struct {
	mounts      []render.Scene
	teardowns   int
	repositions []repositionCall
	tooltips    []tooltip.Formatter
	marks       map[model.Axis][][]selection.Option
	calls       []string

	live         bool
	liveSurfaces int
	maxLive      int

	failReposition bool
	failTooltip    bool
	failMark       bool
	failMount      bool
}

func newMockEngine() *mockEngine {
	return &mockEngine{marks: make(map[model.Axis][][]selection.Option)}
}

func (m *mockEngine) Mount(_ context.Context, s render.Scene) error {
	m.calls = append(m.calls, "mount")
	if m.failMount {
		return eris.New("mount failed")
	}
	if m.live {
		m.liveSurfaces--
	}
	m.live = true
	m.liveSurfaces++
	if m.liveSurfaces > m.maxLive {
		m.maxLive = m.liveSurfaces
	}
	m.mounts = append(m.mounts, s)
	return nil
}

func (m *mockEngine) Reposition(_ context.Context, axis model.Axis, mp scale.Mapping, f model.FieldSpec, d time.Duration) error {
	m.calls = append(m.calls, "reposition")
	if m.failReposition {
		return eris.New("reposition failed")
	}
	m.repositions = append(m.repositions, repositionCall{axis: axis, mapping: mp, field: f.Key, duration: d})
	return nil
}

func (m *mockEngine) SetTooltip(f tooltip.Formatter) error {
	m.calls = append(m.calls, "tooltip")
	if m.failTooltip {
		return eris.New("tooltip failed")
	}
	m.tooltips = append(m.tooltips, f)
	return nil
}

func (m *mockEngine) MarkLabels(axis model.Axis, opts []selection.Option) error {
	m.calls = append(m.calls, "mark")
	if m.failMark {
		return eris.New("mark failed")
	}
	m.marks[axis] = append(m.marks[axis], opts)
	return nil
}

func (m *mockEngine) Teardown() error {
	m.calls = append(m.calls, "teardown")
	m.teardowns++
	if m.live {
		m.live = false
		m.liveSurfaces--
	}
	return nil
}
