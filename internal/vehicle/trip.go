package vehicle

import (
	"fmt"
	"math"
)

// Scenario selects the speed and terrain profiles of a run.
type Scenario int

const (
	ScenarioUrban   Scenario = 1 // stop-and-go ramp up, cruise, ramp down; flat
	ScenarioHighway Scenario = 2 // triangular speed ramp; +/0/-/0 grade
	ScenarioSport   Scenario = 3 // sinusoidal speed; oscillating grade
)

// Scenarios lists every known scenario in id order.
var Scenarios = []Scenario{ScenarioUrban, ScenarioHighway, ScenarioSport}

// Valid reports whether s is a known scenario.
func (s Scenario) Valid() bool {
	return s >= ScenarioUrban && s <= ScenarioSport
}

func (s Scenario) String() string {
	switch s {
	case ScenarioUrban:
		return "urban"
	case ScenarioHighway:
		return "highway"
	case ScenarioSport:
		return "sport"
	default:
		return fmt.Sprintf("scenario(%d)", int(s))
	}
}

// Description is the menu text shown to interactive users.
func (s Scenario) Description() string {
	switch s {
	case ScenarioUrban:
		return "Urban Driving (Stop-and-go traffic)"
	case ScenarioHighway:
		return "Highway Driving (Acceleration/Deceleration)"
	case ScenarioSport:
		return "Sport Driving (Variable speed)"
	default:
		return s.String()
	}
}

// ParseScenario converts a numeric id into a Scenario.
func ParseScenario(id int) (Scenario, error) {
	s := Scenario(id)
	if !s.Valid() {
		return 0, fmt.Errorf("%w, got %d", ErrInvalidScenario, id)
	}
	return s, nil
}

// Trip describes the journey to simulate.
type Trip struct {
	DistanceKm      float64  `json:"distance_km"`
	InitialSpeedKmh float64  `json:"initial_speed_kmh"`
	Scenario        Scenario `json:"scenario"`
}

// Validate checks that distance and speed are positive and finite and the
// scenario is known.
func (t Trip) Validate() error {
	if !(t.DistanceKm > 0) || math.IsInf(t.DistanceKm, 1) {
		return fmt.Errorf("%w: distance must be positive, got %g", ErrInvalidInput, t.DistanceKm)
	}
	if !(t.InitialSpeedKmh > 0) || math.IsInf(t.InitialSpeedKmh, 1) {
		return fmt.Errorf("%w: initial speed must be positive, got %g", ErrInvalidInput, t.InitialSpeedKmh)
	}
	if !t.Scenario.Valid() {
		return fmt.Errorf("%w, got %d", ErrInvalidScenario, int(t.Scenario))
	}
	return nil
}
