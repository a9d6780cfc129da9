// Package stats reduces a simulation's step records into summary figures.
//
// Summarize reproduces the run summary exactly, including its
// left-rectangle distance estimate (post-step speed times the elapsed time
// since the previous record; the first record contributes nothing). Analyze
// adds the wider analysis set: distributions, acceleration behaviour, force
// breakdown, peak consumption window, correlations and cost estimates.
package stats

import (
	"errors"
	"fmt"

	"github.com/banshee-data/vehicle.sim/internal/sim"
)

// ErrDegenerateRun is returned for an empty record sequence or one that
// covers no distance.
var ErrDegenerateRun = errors.New("degenerate run")

// Summary is the headline result of a run.
type Summary struct {
	Records       int     `json:"records"`
	TotalFuel     float64 `json:"total_fuel_l"`
	TotalDistance float64 `json:"total_distance_m"`
	FuelPer100km  float64 `json:"fuel_per_100km"`
	AvgSpeed      float64 `json:"avg_speed_mps"`
	MaxSpeed      float64 `json:"max_speed_mps"`
	AvgDrag       float64 `json:"avg_drag_n"`
	MaxDrag       float64 `json:"max_drag_n"`
	MaxAltitude   float64 `json:"max_altitude_m"`
	MinAltitude   float64 `json:"min_altitude_m"`
}

// AltitudeChange is the spread between the highest and lowest altitude.
func (s Summary) AltitudeChange() float64 {
	return s.MaxAltitude - s.MinAltitude
}

// Summarize makes a single pass over records. It fails with
// ErrDegenerateRun if records is empty or the distance covered is zero.
func Summarize(records []sim.StepRecord) (Summary, error) {
	if len(records) == 0 {
		return Summary{}, fmt.Errorf("%w: no step records", ErrDegenerateRun)
	}

	s := Summary{
		Records:     len(records),
		TotalFuel:   records[len(records)-1].CumulativeFuel,
		MaxAltitude: records[0].Altitude,
		MinAltitude: records[0].Altitude,
	}

	var sumSpeed, sumDrag float64
	for i, r := range records {
		if i > 0 {
			s.TotalDistance += r.Speed * (r.Time - records[i-1].Time)
		}
		sumSpeed += r.Speed
		sumDrag += r.Drag

		if r.Speed > s.MaxSpeed {
			s.MaxSpeed = r.Speed
		}
		if r.Drag > s.MaxDrag {
			s.MaxDrag = r.Drag
		}
		if r.Altitude > s.MaxAltitude {
			s.MaxAltitude = r.Altitude
		}
		if r.Altitude < s.MinAltitude {
			s.MinAltitude = r.Altitude
		}
	}

	n := float64(len(records))
	s.AvgSpeed = sumSpeed / n
	s.AvgDrag = sumDrag / n

	if s.TotalDistance == 0 {
		return Summary{}, fmt.Errorf("%w: zero distance over %d records", ErrDegenerateRun, len(records))
	}
	s.FuelPer100km = (s.TotalFuel / s.TotalDistance) * 100000.0
	return s, nil
}
