// Package testutil provides shared fixtures for the simulator's tests.
package testutil

import (
	"net/http"
	"testing"

	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

// ReferenceProfile is a mid-size passenger car.
func ReferenceProfile() vehicle.Profile {
	return vehicle.NewProfile(1500, 1.8, 1.5, 4.5, 0.25)
}

// ReferenceTrip is a 10 km trip at 50 km/h: 720 steps at dt=1.
func ReferenceTrip(s vehicle.Scenario) vehicle.Trip {
	return vehicle.Trip{DistanceKm: 10, InitialSpeedKmh: 50, Scenario: s}
}

// ReferenceRun simulates ReferenceProfile over ReferenceTrip(s).
func ReferenceRun(t testing.TB, s vehicle.Scenario) *sim.Result {
	t.Helper()
	res, err := sim.Simulate(ReferenceProfile(), ReferenceTrip(s))
	if err != nil {
		t.Fatalf("reference run: %v", err)
	}
	return res
}

// SyntheticRecords returns n records at 1 s spacing with constant speed
// and fuel, enough to exercise exporters without running the engine.
func SyntheticRecords(n int, speed, fuel float64) []sim.StepRecord {
	out := make([]sim.StepRecord, n)
	var cum float64
	for i := range out {
		cum += fuel
		out[i] = sim.StepRecord{
			Time:              float64(i),
			Speed:             speed,
			Drag:              0.5 * speed * speed,
			RollingResistance: 220.725,
			TotalResistance:   0.5*speed*speed + 220.725,
			Fuel:              fuel,
			CumulativeFuel:    cum,
			Reynolds:          4.2e6,
			Cd:                0.30,
		}
	}
	return out
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d (%s)", got, want, http.StatusText(want))
	}
}
