// Package viewport derives the drawable chart area from the surface size.
package viewport

import (
	"github.com/rotisserie/eris"
	"golang.org/x/term"
)

// ErrTooSmall is returned when margins leave no room for the chart.
var ErrTooSmall = eris.New("viewport: chart area is empty")

// Margin is the space reserved around the chart for axes and labels.
type Margin struct {
	Top    int `yaml:"top" mapstructure:"top"`
	Right  int `yaml:"right" mapstructure:"right"`
	Bottom int `yaml:"bottom" mapstructure:"bottom"`
	Left   int `yaml:"left" mapstructure:"left"`
}

// DefaultMargin is used for pixel surfaces (SVG).
var DefaultMargin = Margin{Top: 20, Right: 40, Bottom: 80, Left: 100}

// TerminalMargin is used for character-cell surfaces.
var TerminalMargin = Margin{Top: 1, Right: 2, Bottom: 5, Left: 8}

// Viewport is the full surface size plus its margins.
type Viewport struct {
	Width  int
	Height int
	Margin Margin
}

// New returns a viewport of the given surface size.
func New(width, height int, m Margin) Viewport {
	return Viewport{Width: width, Height: height, Margin: m}
}

// FromTerminal measures the terminal attached to fd.
func FromTerminal(fd int, m Margin) (Viewport, error) {
	w, h, err := term.GetSize(fd)
	if err != nil {
		return Viewport{}, eris.Wrap(err, "viewport: measure terminal")
	}
	return New(w, h, m), nil
}

// ChartWidth is the surface width minus left and right margins.
func (v Viewport) ChartWidth() int { return v.Width - v.Margin.Left - v.Margin.Right }

// ChartHeight is the surface height minus top and bottom margins.
func (v Viewport) ChartHeight() int { return v.Height - v.Margin.Top - v.Margin.Bottom }

// XRange is the pixel range of the x axis: [0, chartWidth].
func (v Viewport) XRange() (float64, float64) { return 0, float64(v.ChartWidth()) }

// YRange is the pixel range of the y axis, inverted: [chartHeight, 0].
func (v Viewport) YRange() (float64, float64) { return float64(v.ChartHeight()), 0 }

// Validate rejects viewports whose chart area is not positive.
func (v Viewport) Validate() error {
	if v.ChartWidth() <= 0 || v.ChartHeight() <= 0 {
		return eris.Wrapf(ErrTooSmall, "%dx%d with margins %+v", v.Width, v.Height, v.Margin)
	}
	return nil
}
