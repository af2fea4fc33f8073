package scale

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/healthplot/internal/model"
)

func povertyRecords(vals ...float64) []model.Record {
	out := make([]model.Record, len(vals))
	for i, v := range vals {
		out[i] = model.Record{Abbr: "S" + string(rune('A'+i)), Poverty: v}
	}
	return out
}

func povertyField() model.FieldSpec {
	return *model.DefaultCatalog().ByKey(model.FieldPoverty)
}

func TestCompute_DomainPadding(t *testing.T) {
	m, err := Compute(povertyRecords(10, 20, 30), povertyField(), 0, 100, DefaultPadding)
	require.NoError(t, err)

	lo, hi := m.Domain()
	assert.InDelta(t, 9.0, lo, 1e-9)
	assert.InDelta(t, 33.0, hi, 1e-9)
	assert.InDelta(t, 87.5, m.Map(30), 1e-9)
	assert.InDelta(t, 0.0, m.Map(9), 1e-9)
	assert.InDelta(t, 100.0, m.Map(33), 1e-9)
}

func TestCompute_WidePadding(t *testing.T) {
	m, err := Compute(povertyRecords(10, 20, 30), povertyField(), 0, 100, WidePadding)
	require.NoError(t, err)

	lo, hi := m.Domain()
	assert.InDelta(t, 8.0, lo, 1e-9)
	assert.InDelta(t, 36.0, hi, 1e-9)
}

func TestCompute_Monotonic(t *testing.T) {
	recs := povertyRecords(12.8, 18.2, 9.1, 21.5, 15.0)
	f := povertyField()

	x, err := Compute(recs, f, 0, 800, DefaultPadding)
	require.NoError(t, err)
	y, err := Compute(recs, f, 420, 0, DefaultPadding)
	require.NoError(t, err)

	vals := []float64{9.1, 12.8, 15.0, 18.2, 21.5}
	for i := 1; i < len(vals); i++ {
		assert.Less(t, x.Map(vals[i-1]), x.Map(vals[i]), "x must increase")
		assert.Greater(t, y.Map(vals[i-1]), y.Map(vals[i]), "y must decrease")
	}
}

func TestCompute_Deterministic(t *testing.T) {
	recs := povertyRecords(3, 7, 11)
	a, err := Compute(recs, povertyField(), 0, 50, DefaultPadding)
	require.NoError(t, err)
	b, err := Compute(recs, povertyField(), 0, 50, DefaultPadding)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompute_EmptyDataset(t *testing.T) {
	_, err := Compute(nil, povertyField(), 0, 100, DefaultPadding)
	require.Error(t, err)

	var inv *InvalidDatasetError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, model.FieldPoverty, inv.Field)
}

func TestCompute_NonFinite(t *testing.T) {
	_, err := Compute(povertyRecords(1, math.NaN()), povertyField(), 0, 100, DefaultPadding)
	var inv *InvalidDatasetError
	require.True(t, errors.As(err, &inv))
	assert.Contains(t, inv.Error(), "non-finite")
}

func TestCompute_DegenerateDomain(t *testing.T) {
	m, err := Compute(povertyRecords(0, 0, 0), povertyField(), 0, 100, DefaultPadding)
	require.NoError(t, err)
	assert.True(t, m.Degenerate())
	assert.InDelta(t, 50.0, m.Map(0), 1e-9)
	assert.False(t, math.IsNaN(m.Map(5)))
}

func TestCompute_IdenticalNonZeroValuesArePadded(t *testing.T) {
	m, err := Compute(povertyRecords(10, 10), povertyField(), 0, 100, DefaultPadding)
	require.NoError(t, err)
	assert.False(t, m.Degenerate())
	assert.InDelta(t, 50.0, m.Map(10), 1e-9)
}

func TestPadding_Validate(t *testing.T) {
	assert.NoError(t, DefaultPadding.Validate())
	assert.Error(t, Padding{Low: 0, High: 1.1}.Validate())
	assert.Error(t, Padding{Low: 0.9, High: math.Inf(1)}.Validate())

	_, err := Compute(povertyRecords(1, 2), povertyField(), 0, 100, Padding{Low: -1, High: 1})
	assert.Error(t, err)
}

func TestMapping_Invert(t *testing.T) {
	m := NewMapping(9, 33, 0, 100)
	assert.InDelta(t, 30.0, m.Invert(m.Map(30)), 1e-9)

	y := NewMapping(9, 33, 400, 0)
	assert.InDelta(t, 12.5, y.Invert(y.Map(12.5)), 1e-9)
}

func TestMapping_Ticks(t *testing.T) {
	m := NewMapping(0, 10, 0, 100)
	assert.Equal(t, []float64{0, 2.5, 5, 7.5, 10}, m.Ticks(5))
	assert.Equal(t, []float64{0}, m.Ticks(1))
	assert.Equal(t, []float64{4}, NewMapping(4, 4, 0, 10).Ticks(5))
}
