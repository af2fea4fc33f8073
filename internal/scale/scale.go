// Package scale computes the linear value-to-pixel mappings that position
// scatter-plot marks along an axis.
package scale

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/healthplot/internal/model"
)

// Padding widens a field's observed extent before it becomes a scale domain:
// domain = [min*Low, max*High].
type Padding struct {
	Low  float64 `yaml:"low" mapstructure:"low"`
	High float64 `yaml:"high" mapstructure:"high"`
}

// DefaultPadding is the 0.9/1.1 padding of the published chart.
var DefaultPadding = Padding{Low: 0.9, High: 1.1}

// WidePadding is the 0.8/1.2 variant.
var WidePadding = Padding{Low: 0.8, High: 1.2}

// Validate rejects non-positive or non-finite padding factors.
func (p Padding) Validate() error {
	for _, f := range []float64{p.Low, p.High} {
		if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return eris.Errorf("scale: invalid padding factors %v/%v", p.Low, p.High)
		}
	}
	return nil
}

// InvalidDatasetError reports a dataset that cannot produce a scale.
type InvalidDatasetError struct {
	Field  model.FieldKey
	Reason string
}

func (e *InvalidDatasetError) Error() string {
	if e.Field == "" {
		return "invalid dataset: " + e.Reason
	}
	return fmt.Sprintf("invalid dataset for %s: %s", e.Field, e.Reason)
}

// Mapping is a linear map from a data domain onto a pixel range.
type Mapping struct {
	domainMin, domainMax float64
	rangeLo, rangeHi     float64
}

// NewMapping builds a mapping from explicit domain and range bounds.
func NewMapping(domainMin, domainMax, rangeLo, rangeHi float64) Mapping {
	return Mapping{domainMin: domainMin, domainMax: domainMax, rangeLo: rangeLo, rangeHi: rangeHi}
}

// Compute builds the mapping for field over the whole dataset. An empty
// dataset or a non-finite observation yields *InvalidDatasetError. When every
// padded value collapses to one point the mapping is constant at the midpoint
// of the range.
func Compute(records []model.Record, field model.FieldSpec, lo, hi float64, pad Padding) (Mapping, error) {
	if len(records) == 0 {
		return Mapping{}, &InvalidDatasetError{Field: field.Key, Reason: "no records"}
	}
	if field.Value == nil {
		return Mapping{}, eris.Errorf("scale: field %q has no accessor", field.Key)
	}
	if err := pad.Validate(); err != nil {
		return Mapping{}, err
	}

	minV, maxV := math.Inf(1), math.Inf(-1)
	for i, r := range records {
		v := field.Value(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Mapping{}, &InvalidDatasetError{
				Field:  field.Key,
				Reason: fmt.Sprintf("non-finite value at row %d (%s)", i, r.Abbr),
			}
		}
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}

	return NewMapping(minV*pad.Low, maxV*pad.High, lo, hi), nil
}

// Domain returns the padded data extent.
func (m Mapping) Domain() (float64, float64) { return m.domainMin, m.domainMax }

// Range returns the pixel extent.
func (m Mapping) Range() (float64, float64) { return m.rangeLo, m.rangeHi }

// Degenerate reports whether the domain has zero width.
func (m Mapping) Degenerate() bool { return m.domainMin == m.domainMax }

// Map converts a data value to a pixel coordinate.
func (m Mapping) Map(v float64) float64 {
	if m.Degenerate() {
		return (m.rangeLo + m.rangeHi) / 2
	}
	return m.rangeLo + (v-m.domainMin)/(m.domainMax-m.domainMin)*(m.rangeHi-m.rangeLo)
}

// Invert converts a pixel coordinate back to a data value.
func (m Mapping) Invert(px float64) float64 {
	if m.rangeLo == m.rangeHi || m.Degenerate() {
		return m.domainMin
	}
	return m.domainMin + (px-m.rangeLo)/(m.rangeHi-m.rangeLo)*(m.domainMax-m.domainMin)
}

// Ticks returns n evenly spaced domain values from min to max inclusive.
func (m Mapping) Ticks(n int) []float64 {
	if n < 2 || m.Degenerate() {
		return []float64{m.domainMin}
	}
	ticks := make([]float64, n)
	step := (m.domainMax - m.domainMin) / float64(n-1)
	for i := range n {
		ticks[i] = m.domainMin + float64(i)*step
	}
	ticks[n-1] = m.domainMax
	return ticks
}
