package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/vehicle.sim/internal/sim"
)

// Defaults for AnalysisOptions.
const (
	DefaultFuelPricePerLiter = 1.5
	DefaultCO2PerLiter       = 2.31 // kg
	DefaultFuelEnergyDensity = 32.4 // MJ/L
	DefaultPeakWindow        = 100  // steps
)

// AnalysisOptions are the economic and windowing parameters of Analyze.
type AnalysisOptions struct {
	FuelPricePerLiter float64 `json:"fuel_price_per_liter"`
	CO2PerLiter       float64 `json:"co2_per_liter"`
	FuelEnergyDensity float64 `json:"fuel_energy_density"`
	PeakWindow        int     `json:"peak_window"`
}

// DefaultAnalysisOptions returns the stock analysis parameters.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		FuelPricePerLiter: DefaultFuelPricePerLiter,
		CO2PerLiter:       DefaultCO2PerLiter,
		FuelEnergyDensity: DefaultFuelEnergyDensity,
		PeakWindow:        DefaultPeakWindow,
	}
}

// Basic describes the distribution of one series.
type Basic struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Range  float64 `json:"range"`
}

// AccelerationMetrics separates speeding up from slowing down.
type AccelerationMetrics struct {
	AvgAcceleration float64 `json:"avg_acceleration"`
	AvgDeceleration float64 `json:"avg_deceleration"`
	MaxAcceleration float64 `json:"max_acceleration"`
	MaxDeceleration float64 `json:"max_deceleration"`
}

// ResistanceBreakdown is each force's share of the summed resistance, in
// percent. Slope counts by magnitude.
type ResistanceBreakdown struct {
	DragPct    float64 `json:"drag_pct"`
	RollingPct float64 `json:"rolling_pct"`
	SlopePct   float64 `json:"slope_pct"`
}

// PeakPeriod is the window of PeakWindow steps with the highest fuel use.
type PeakPeriod struct {
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Consumption float64 `json:"consumption_l"`
}

// Correlations are Pearson coefficients between selected series.
type Correlations struct {
	SpeedFuel  float64 `json:"speed_fuel"`
	SpeedDrag  float64 `json:"speed_drag"`
	ReynoldsCd float64 `json:"reynolds_cd"`
	SlopeFuel  float64 `json:"slope_fuel"`
}

// Analysis is the full analysis of one run.
type Analysis struct {
	Summary          Summary              `json:"summary"`
	EnergyEfficiency float64              `json:"energy_efficiency_km_per_mj"`
	Cost             float64              `json:"cost"`
	CO2              float64              `json:"co2_kg"`
	Speed            Basic                `json:"speed"`
	Drag             Basic                `json:"drag"`
	Reynolds         Basic                `json:"reynolds"`
	Altitude         Basic                `json:"altitude"`
	Acceleration     AccelerationMetrics  `json:"acceleration"`
	Resistance       *ResistanceBreakdown `json:"resistance,omitempty"`
	Peak             *PeakPeriod          `json:"peak,omitempty"`
	Correlations     Correlations         `json:"correlations"`
}

// Series extracts one column from records.
func Series(records []sim.StepRecord, field func(sim.StepRecord) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = field(r)
	}
	return out
}

// Analyze computes the summary and the extended analysis. It fails exactly
// when Summarize does.
func Analyze(records []sim.StepRecord, opts AnalysisOptions) (*Analysis, error) {
	summary, err := Summarize(records)
	if err != nil {
		return nil, err
	}

	speed := Series(records, func(r sim.StepRecord) float64 { return r.Speed })
	drag := Series(records, func(r sim.StepRecord) float64 { return r.Drag })
	rolling := Series(records, func(r sim.StepRecord) float64 { return r.RollingResistance })
	slope := Series(records, func(r sim.StepRecord) float64 { return r.SlopeResistance })
	fuel := Series(records, func(r sim.StepRecord) float64 { return r.Fuel })
	reynolds := Series(records, func(r sim.StepRecord) float64 { return r.Reynolds })
	cd := Series(records, func(r sim.StepRecord) float64 { return r.Cd })
	altitude := Series(records, func(r sim.StepRecord) float64 { return r.Altitude })
	grade := Series(records, func(r sim.StepRecord) float64 { return r.Slope })
	accel := Series(records, func(r sim.StepRecord) float64 { return r.Acceleration })

	a := &Analysis{
		Summary:      summary,
		Cost:         summary.TotalFuel * opts.FuelPricePerLiter,
		CO2:          summary.TotalFuel * opts.CO2PerLiter,
		Speed:        Describe(speed),
		Drag:         Describe(drag),
		Reynolds:     Describe(reynolds),
		Altitude:     Describe(altitude),
		Acceleration: Acceleration(accel),
		Resistance:   Breakdown(drag, rolling, slope),
		Peak:         PeakConsumption(records, opts.PeakWindow),
		Correlations: Correlations{
			SpeedFuel:  Correlation(speed, fuel),
			SpeedDrag:  Correlation(speed, drag),
			ReynoldsCd: Correlation(reynolds, cd),
			SlopeFuel:  Correlation(grade, fuel),
		},
	}
	if energy := summary.TotalFuel * opts.FuelEnergyDensity; energy != 0 {
		a.EnergyEfficiency = (summary.TotalDistance / 1000.0) / energy
	}
	return a, nil
}

// Describe returns mean, median, sample standard deviation, min, max and
// range of xs. The zero Basic is returned for an empty series.
func Describe(xs []float64) Basic {
	if len(xs) == 0 {
		return Basic{}
	}
	b := Basic{
		Mean:   stat.Mean(xs, nil),
		Median: Median(xs),
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
	}
	if len(xs) > 1 {
		b.StdDev = stat.StdDev(xs, nil)
	}
	b.Range = b.Max - b.Min
	return b
}

// Median returns the middle value of xs, averaging the two middle values
// for even lengths. xs is not modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Acceleration averages positive and negative accelerations separately and
// reports the extremes.
func Acceleration(accel []float64) AccelerationMetrics {
	var m AccelerationMetrics
	if len(accel) == 0 {
		return m
	}
	var pos, neg []float64
	for _, a := range accel {
		switch {
		case a > 0:
			pos = append(pos, a)
		case a < 0:
			neg = append(neg, a)
		}
	}
	if len(pos) > 0 {
		m.AvgAcceleration = stat.Mean(pos, nil)
	}
	if len(neg) > 0 {
		m.AvgDeceleration = stat.Mean(neg, nil)
	}
	m.MaxAcceleration = floats.Max(accel)
	m.MaxDeceleration = floats.Min(accel)
	return m
}

// Breakdown returns the share of drag, rolling and |slope| in the summed
// resistance, or nil when there is no resistance at all.
func Breakdown(drag, rolling, slope []float64) *ResistanceBreakdown {
	totalDrag := floats.Sum(drag)
	totalRolling := floats.Sum(rolling)
	var totalSlope float64
	for _, s := range slope {
		totalSlope += math.Abs(s)
	}
	total := totalDrag + totalRolling + totalSlope
	if total == 0 {
		return nil
	}
	return &ResistanceBreakdown{
		DragPct:    totalDrag / total * 100,
		RollingPct: totalRolling / total * 100,
		SlopePct:   totalSlope / total * 100,
	}
}

// PeakConsumption finds the window of the given number of steps with the
// largest summed fuel. It returns nil unless there are more records than
// the window length. Ties keep the earliest window.
func PeakConsumption(records []sim.StepRecord, window int) *PeakPeriod {
	if window <= 0 || len(records) <= window {
		return nil
	}
	var sum float64
	for i := 0; i < window; i++ {
		sum += records[i].Fuel
	}
	best, bestIdx := sum, 0
	for i := 1; i < len(records)-window; i++ {
		sum += records[i+window-1].Fuel - records[i-1].Fuel
		if sum > best {
			best, bestIdx = sum, i
		}
	}
	return &PeakPeriod{
		StartTime:   records[bestIdx].Time,
		EndTime:     records[bestIdx+window].Time,
		Consumption: best,
	}
}

// Correlation is the Pearson coefficient of x and y. It returns 0 when the
// lengths differ, fewer than two samples exist, or either series is constant.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// RollingFuelRate returns L/100km over each sliding window of the given
// number of records. Windows covering no distance report zero.
func RollingFuelRate(records []sim.StepRecord, window int) []float64 {
	if window <= 0 || len(records) <= window {
		return nil
	}
	out := make([]float64, 0, len(records)-window)
	for i := 0; i < len(records)-window; i++ {
		var fuel, dist float64
		for _, r := range records[i : i+window] {
			fuel += r.Fuel
		}
		for j := i + 1; j <= i+window; j++ {
			dist += records[j].Speed * (records[j].Time - records[j-1].Time)
		}
		if dist > 0 {
			out = append(out, fuel/dist*100000.0)
		} else {
			out = append(out, 0)
		}
	}
	return out
}
