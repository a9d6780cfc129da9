package scenario

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

const base = 13.888888888888889 // 50 km/h

func TestSpeed_Urban(t *testing.T) {
	const n = 720

	assert.InDelta(t, 0.3*base, Speed(vehicle.ScenarioUrban, 0, n, base), 1e-12, "starts at 30%")
	assert.Equal(t, base, Speed(vehicle.ScenarioUrban, 144, n, base), "base speed at 20%")
	assert.Equal(t, base, Speed(vehicle.ScenarioUrban, 575, n, base), "cruise until 80%")
	assert.InDelta(t, base, Speed(vehicle.ScenarioUrban, 576, n, base), 1e-9, "ramp down starts at base")
	assert.Equal(t, MinSpeed, Speed(vehicle.ScenarioUrban, n-1, n, base), "ends on the floor")

	// Ramp up is strictly increasing and never exceeds base.
	prev := 0.0
	for i := 0; i < 144; i++ {
		v := Speed(vehicle.ScenarioUrban, i, n, base)
		assert.Greater(t, v, prev)
		assert.LessOrEqual(t, v, base)
		prev = v
	}
}

func TestSpeed_UrbanFormula(t *testing.T) {
	// 0.3 + 3.5p during ramp up; 1 - 5(p-0.8) during ramp down.
	const n = 1000
	for _, step := range []int{0, 50, 199, 800, 900, 960} {
		p := float64(step) / n
		var want float64
		if p < 0.2 {
			want = base * (0.3 + 3.5*p)
		} else {
			want = math.Max(MinSpeed, base*(1-5*(p-0.8)))
		}
		assert.InDelta(t, want, Speed(vehicle.ScenarioUrban, step, n, base), 1e-9, "step %d", step)
	}
}

func TestSpeed_Highway(t *testing.T) {
	const n = 100
	assert.Equal(t, base, Speed(vehicle.ScenarioHighway, 0, n, base))
	assert.InDelta(t, base+0.02*49, Speed(vehicle.ScenarioHighway, 49, n, base), 1e-12)
	assert.InDelta(t, base+0.02*50, Speed(vehicle.ScenarioHighway, 50, n, base), 1e-12, "peak at midpoint")
	assert.InDelta(t, base+0.02*50-0.02*49, Speed(vehicle.ScenarioHighway, 99, n, base), 1e-12)

	// Symmetric around the midpoint.
	for k := 1; k < 50; k++ {
		assert.InDelta(t,
			Speed(vehicle.ScenarioHighway, 50-k, n, base),
			Speed(vehicle.ScenarioHighway, 50+k, n, base), 1e-9, "offset %d", k)
	}
}

func TestSpeed_Sport(t *testing.T) {
	const n = 400
	assert.InDelta(t, base, Speed(vehicle.ScenarioSport, 0, n, base), 1e-12)
	assert.InDelta(t, 1.3*base, Speed(vehicle.ScenarioSport, 50, n, base), 1e-9, "crest at 1/8")
	assert.InDelta(t, 0.7*base, Speed(vehicle.ScenarioSport, 150, n, base), 1e-9, "trough at 3/8")
}

func TestSpeed_Floor(t *testing.T) {
	for _, s := range vehicle.Scenarios {
		for step := 0; step < 50; step++ {
			assert.GreaterOrEqual(t, Speed(s, step, 50, 0.5), MinSpeed)
		}
	}
	assert.Equal(t, MinSpeed, Speed(vehicle.ScenarioUrban, 0, 0, 0.1), "zero steps does not divide by zero")
}

func TestSlope_Urban(t *testing.T) {
	for _, tm := range []float64{0, 10, 359.5, 720} {
		assert.Equal(t, 0.0, Slope(vehicle.ScenarioUrban, tm, 720))
	}
}

func TestSlope_Highway(t *testing.T) {
	const total = 720.0
	assert.Equal(t, 0.02, Slope(vehicle.ScenarioHighway, 0, total))
	assert.Equal(t, 0.02, Slope(vehicle.ScenarioHighway, 179, total))
	assert.Equal(t, 0.0, Slope(vehicle.ScenarioHighway, 180, total))
	assert.Equal(t, -0.02, Slope(vehicle.ScenarioHighway, 360, total))
	assert.Equal(t, -0.02, Slope(vehicle.ScenarioHighway, 539, total))
	assert.Equal(t, 0.0, Slope(vehicle.ScenarioHighway, 540, total))
}

func TestSlope_HighwayIntegratesToZero(t *testing.T) {
	// At constant ground speed the +/0/-/0 grade returns to the start height.
	const total = 800.0
	altitude := 0.0
	for i := 0; i < int(total); i++ {
		altitude += 10 * math.Sin(Slope(vehicle.ScenarioHighway, float64(i), total))
	}
	assert.InDelta(t, 0, altitude, 1e-9)
}

func TestSlope_Sport(t *testing.T) {
	const total = 600.0
	assert.InDelta(t, 0, Slope(vehicle.ScenarioSport, 0, total), 1e-15)
	assert.InDelta(t, 0.03, Slope(vehicle.ScenarioSport, 50, total), 1e-12, "quarter period")
	assert.InDelta(t, -0.03, Slope(vehicle.ScenarioSport, 150, total), 1e-12)

	for i := 0; i < int(total); i++ {
		a := Slope(vehicle.ScenarioSport, float64(i), total)
		assert.LessOrEqual(t, math.Abs(a), 0.03+1e-15)
	}
}

func TestGeneratorsAreStateless(t *testing.T) {
	a := Speed(vehicle.ScenarioSport, 123, 720, base)
	_ = Speed(vehicle.ScenarioSport, 7, 720, base)
	assert.Equal(t, a, Speed(vehicle.ScenarioSport, 123, 720, base))
}
