package model

// Record is one state's row of the health-survey dataset.
type Record struct {
	State      string  `csv:"state" json:"state"`
	Abbr       string  `csv:"abbr" json:"abbr"`
	Poverty    float64 `csv:"poverty" json:"poverty"`
	Age        float64 `csv:"age" json:"age"`
	Income     float64 `csv:"income" json:"income"`
	Healthcare float64 `csv:"healthcare" json:"healthcare"`
	Smokes     float64 `csv:"smokes" json:"smokes"`
	Obesity    float64 `csv:"obesity" json:"obesity"`
}

// Axis identifies one dimension of the scatter plot.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Axes lists both plot axes in rendering order.
var Axes = []Axis{AxisX, AxisY}

// Valid reports whether a is a known axis.
func (a Axis) Valid() bool {
	return a == AxisX || a == AxisY
}

// FieldKey names a plottable numeric column of Record.
type FieldKey string

const (
	FieldPoverty    FieldKey = "poverty"
	FieldAge        FieldKey = "age"
	FieldIncome     FieldKey = "income"
	FieldHealthcare FieldKey = "healthcare"
	FieldSmokes     FieldKey = "smokes"
	FieldObesity    FieldKey = "obesity"
)
