package sim

// StepRecord is one simulated step. Records are created once by Run and
// never modified.
type StepRecord struct {
	Time              float64 `json:"time"`               // s
	Speed             float64 `json:"speed"`              // m/s
	Acceleration      float64 `json:"acceleration"`       // m/s^2
	Drag              float64 `json:"drag"`               // N
	RollingResistance float64 `json:"rolling_resistance"` // N
	SlopeResistance   float64 `json:"slope_resistance"`   // N
	TotalResistance   float64 `json:"total_resistance"`   // N
	Fuel              float64 `json:"fuel"`               // L, this step
	CumulativeFuel    float64 `json:"cumulative_fuel"`    // L
	Reynolds          float64 `json:"reynolds"`
	Cd                float64 `json:"cd"`
	Altitude          float64 `json:"altitude"` // m
	Slope             float64 `json:"slope"`    // rad
}

// Columns are the external names of StepRecord fields in output order.
var Columns = []string{
	"time",
	"speed",
	"acceleration",
	"drag",
	"rolling_resistance",
	"slope_resistance",
	"total_resistance",
	"fuel",
	"cumulative_fuel",
	"reynolds",
	"cd",
	"altitude",
	"slope",
}

// Values returns the record's fields in Columns order.
func (r StepRecord) Values() []float64 {
	return []float64{
		r.Time,
		r.Speed,
		r.Acceleration,
		r.Drag,
		r.RollingResistance,
		r.SlopeResistance,
		r.TotalResistance,
		r.Fuel,
		r.CumulativeFuel,
		r.Reynolds,
		r.Cd,
		r.Altitude,
		r.Slope,
	}
}

// RecordFromValues is the inverse of Values. It returns false if vals does
// not have one entry per column.
func RecordFromValues(vals []float64) (StepRecord, bool) {
	if len(vals) != len(Columns) {
		return StepRecord{}, false
	}
	return StepRecord{
		Time:              vals[0],
		Speed:             vals[1],
		Acceleration:      vals[2],
		Drag:              vals[3],
		RollingResistance: vals[4],
		SlopeResistance:   vals[5],
		TotalResistance:   vals[6],
		Fuel:              vals[7],
		CumulativeFuel:    vals[8],
		Reynolds:          vals[9],
		Cd:                vals[10],
		Altitude:          vals[11],
		Slope:             vals[12],
	}, true
}

// Result is the ordered output of one run.
type Result struct {
	Steps     int          `json:"steps"`
	TimeStep  float64      `json:"time_step"`
	TotalTime float64      `json:"total_time"`
	Records   []StepRecord `json:"records"`
}

// Empty reports whether the run produced no steps.
func (r *Result) Empty() bool {
	return r == nil || len(r.Records) == 0
}
