package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	cat := DefaultCatalog()

	t.Run("ByKey returns the field", func(t *testing.T) {
		t.Parallel()
		f := cat.ByKey(FieldIncome)
		require.NotNil(t, f)
		assert.Equal(t, AxisX, f.Axis)
		assert.Equal(t, "Household Income (Median)", f.DisplayLabel)
	})

	t.Run("ByKey returns nil for unknown key", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, cat.ByKey("rainfall"))
	})

	t.Run("ForAxis keeps selector order", func(t *testing.T) {
		t.Parallel()
		var xs, ys []FieldKey
		for _, f := range cat.ForAxis(AxisX) {
			xs = append(xs, f.Key)
		}
		for _, f := range cat.ForAxis(AxisY) {
			ys = append(ys, f.Key)
		}
		assert.Equal(t, []FieldKey{FieldPoverty, FieldAge, FieldIncome}, xs)
		assert.Equal(t, []FieldKey{FieldHealthcare, FieldSmokes, FieldObesity}, ys)
	})

	t.Run("defaults are poverty and healthcare", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, FieldPoverty, cat.Default(AxisX).Key)
		assert.Equal(t, FieldHealthcare, cat.Default(AxisY).Key)
	})
}

func TestLabelFor(t *testing.T) {
	t.Parallel()

	cat := DefaultCatalog()
	tests := []struct {
		key  FieldKey
		want string
	}{
		{FieldPoverty, "Poverty: "},
		{FieldAge, "Age: "},
		{FieldIncome, "Household Income: "},
		{FieldHealthcare, "Healthcare: "},
		{FieldSmokes, "Smokes: "},
		{FieldObesity, "Obesity: "},
		{"unknown", ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cat.LabelFor(tt.key))
		})
	}
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	rec := Record{State: "Alabama", Abbr: "AL", Poverty: 18.2, Age: 38.1, Income: 43800, Healthcare: 12.9, Smokes: 23.8, Obesity: 35.2}
	want := map[FieldKey]float64{
		FieldPoverty: 18.2, FieldAge: 38.1, FieldIncome: 43800,
		FieldHealthcare: 12.9, FieldSmokes: 23.8, FieldObesity: 35.2,
	}
	for _, f := range DefaultFields() {
		assert.InDelta(t, want[f.Key], f.Value(rec), 1e-9, f.Key)
	}
}

func TestNewCatalog_Rejects(t *testing.T) {
	t.Parallel()

	val := func(Record) float64 { return 0 }

	t.Run("missing default", func(t *testing.T) {
		t.Parallel()
		_, err := NewCatalog([]FieldSpec{
			{Key: "a", Axis: AxisX, Default: true, Value: val},
			{Key: "b", Axis: AxisY, Value: val},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no default")
	})

	t.Run("two defaults on one axis", func(t *testing.T) {
		t.Parallel()
		_, err := NewCatalog([]FieldSpec{
			{Key: "a", Axis: AxisX, Default: true, Value: val},
			{Key: "b", Axis: AxisX, Default: true, Value: val},
			{Key: "c", Axis: AxisY, Default: true, Value: val},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "two defaults")
	})

	t.Run("duplicate key", func(t *testing.T) {
		t.Parallel()
		_, err := NewCatalog([]FieldSpec{
			{Key: "a", Axis: AxisX, Default: true, Value: val},
			{Key: "a", Axis: AxisY, Default: true, Value: val},
		})
		require.Error(t, err)
	})

	t.Run("missing accessor", func(t *testing.T) {
		t.Parallel()
		_, err := NewCatalog([]FieldSpec{
			{Key: "a", Axis: AxisX, Default: true},
			{Key: "b", Axis: AxisY, Default: true, Value: val},
		})
		require.Error(t, err)
	})

	t.Run("unknown axis", func(t *testing.T) {
		t.Parallel()
		_, err := NewCatalog([]FieldSpec{
			{Key: "a", Axis: "z", Default: true, Value: val},
		})
		require.Error(t, err)
	})
}
