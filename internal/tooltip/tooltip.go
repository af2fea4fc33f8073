// Package tooltip formats the per-point hover text of the scatter plot.
package tooltip

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/healthplot/internal/model"
)

var printer = message.NewPrinter(language.English)

// Formatter renders the tooltip for one record given the active fields.
type Formatter struct {
	X model.FieldSpec
	Y model.FieldSpec
}

// New returns a formatter for the given active fields.
func New(x, y model.FieldSpec) Formatter {
	return Formatter{X: x, Y: y}
}

// With returns a copy with the field for axis replaced.
func (f Formatter) With(axis model.Axis, field model.FieldSpec) Formatter {
	if axis == model.AxisX {
		f.X = field
	} else {
		f.Y = field
	}
	return f
}

// Lines returns the tooltip as display lines: state name, x line, y line.
func (f Formatter) Lines(r model.Record) []string {
	return []string{
		r.State,
		f.X.TooltipLabel + RawValue(f.X.Value(r)),
		f.Y.TooltipLabel + RawValue(f.Y.Value(r)),
	}
}

// Format joins Lines with newlines.
func (f Formatter) Format(r model.Record) string {
	return strings.Join(f.Lines(r), "\n")
}

// RawValue prints v as the dataset holds it: shortest exact decimal, no
// grouping (43800, 18.2).
func RawValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatValue is the axis tick format: whole numbers with thousands grouping,
// everything else as RawValue.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	return RawValue(v)
}
