package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/vehicle.sim/internal/physics"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

func referenceProfile() vehicle.Profile {
	return vehicle.NewProfile(1500, 1.8, 1.5, 4.5, 0.3)
}

func referenceTrip(s vehicle.Scenario) vehicle.Trip {
	return vehicle.Trip{DistanceKm: 10, InitialSpeedKmh: 50, Scenario: s}
}

func run(t *testing.T, p vehicle.Profile, trip vehicle.Trip, opts ...Option) *Result {
	t.Helper()
	res, err := Simulate(p, trip, opts...)
	require.NoError(t, err)
	return res
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	_, err := New(vehicle.NewProfile(0, 1.8, 1.5, 4.5, 0.3), referenceTrip(vehicle.ScenarioUrban))
	assert.ErrorIs(t, err, vehicle.ErrInvalidInput)

	_, err = New(referenceProfile(), vehicle.Trip{DistanceKm: 10, InitialSpeedKmh: 50, Scenario: 9})
	assert.ErrorIs(t, err, vehicle.ErrInvalidScenario)

	_, err = New(vehicle.NewProfile(1500, 1.8, 1.5, 4.5, 0), referenceTrip(vehicle.ScenarioUrban))
	assert.ErrorIs(t, err, vehicle.ErrInvalidInput)

	bad := physics.DefaultConstants()
	bad.HeatingValue = 0
	_, err = New(referenceProfile(), referenceTrip(vehicle.ScenarioUrban), WithConstants(bad))
	assert.ErrorIs(t, err, physics.ErrDomain)
}

func TestNew_RejectsExcessiveStepCount(t *testing.T) {
	huge := vehicle.Trip{DistanceKm: 1e12, InitialSpeedKmh: 10, Scenario: vehicle.ScenarioUrban}
	e, err := New(referenceProfile(), huge)
	assert.Nil(t, e)
	assert.ErrorIs(t, err, vehicle.ErrInvalidInput)
	assert.Contains(t, err.Error(), "limit is 5000000")

	// A tiny time step multiplies the step count of an ordinary trip.
	_, err = New(referenceProfile(), referenceTrip(vehicle.ScenarioUrban), WithTimeStep(1e-6))
	assert.ErrorIs(t, err, vehicle.ErrInvalidInput)

	// The largest trip accepted from users stays well inside the limit.
	longest := vehicle.Trip{DistanceKm: vehicle.DistanceRange.Max, InitialSpeedKmh: vehicle.SpeedRange.Min, Scenario: vehicle.ScenarioHighway}
	e, err = New(referenceProfile(), longest)
	require.NoError(t, err)
	assert.InDelta(t, 180000, e.StepCount(), 1)
}

func TestReferenceRun_Urban(t *testing.T) {
	e, err := New(referenceProfile(), referenceTrip(vehicle.ScenarioUrban))
	require.NoError(t, err)
	assert.Equal(t, StateInitializing, e.State())
	assert.Equal(t, 720, e.StepCount())

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, e.State())
	require.Len(t, res.Records, 720)
	assert.Equal(t, 720, res.Steps)
	assert.Equal(t, 720.0, res.TotalTime)

	base := 50.0 * 1000.0 / 3600.0
	first := res.Records[0]
	assert.Equal(t, 0.0, first.Time)
	assert.InDelta(t, 0.3*base, first.Speed, 1e-12)
	assert.InDelta(t, 0.3*base-base, first.Acceleration, 1e-12, "step 0 drops from the initial speed to 30%")
	assert.Less(t, first.Acceleration, -9.7)
	assert.Equal(t, 0.0, first.Slope)
	assert.Equal(t, 0.0, first.SlopeResistance)
	assert.Equal(t, 0.0, first.Altitude)

	// No tractive force on a decelerating step: fuel covers resistance only.
	wantFuel := first.TotalResistance * first.Speed / 0.3 / 44e6 / 0.74
	assert.InDelta(t, wantFuel, first.Fuel, 1e-15)

	// Second step accelerates, so m*a is added to the resistance.
	second := res.Records[1]
	require.Greater(t, second.Acceleration, 0.0)
	wantFuel = (second.TotalResistance + 1500*second.Acceleration) * second.Speed / 0.3 / 44e6 / 0.74
	assert.InDelta(t, wantFuel, second.Fuel, 1e-15)

	last := res.Records[len(res.Records)-1]
	assert.Equal(t, 719.0, last.Time)
	assert.Equal(t, 1.0, last.Speed)
}

func TestRecordInvariants(t *testing.T) {
	for _, s := range vehicle.Scenarios {
		t.Run(s.String(), func(t *testing.T) {
			res := run(t, referenceProfile(), referenceTrip(s))
			require.NotEmpty(t, res.Records)

			valid := map[float64]bool{0.30: true, 0.32: true, 0.35: true, 0.38: true}
			prev := 0.0
			for i, r := range res.Records {
				assert.Equal(t, float64(i), r.Time)
				assert.GreaterOrEqual(t, r.Speed, 1.0)
				assert.Greater(t, r.Reynolds, 0.0)
				assert.True(t, valid[r.Cd], "cd %v", r.Cd)
				assert.GreaterOrEqual(t, r.Drag, 0.0)
				assert.InDelta(t, r.Drag+r.RollingResistance+r.SlopeResistance, r.TotalResistance, 1e-9)
				assert.InDelta(t, prev+r.Fuel, r.CumulativeFuel, 1e-12)
				prev = r.CumulativeFuel
				if i > 0 {
					assert.InDelta(t, r.Speed-res.Records[i-1].Speed, r.Acceleration, 1e-12)
				}
			}
		})
	}
}

func TestCumulativeFuelMonotoneWhenFuelPositive(t *testing.T) {
	res := run(t, referenceProfile(), referenceTrip(vehicle.ScenarioUrban))
	for i := 1; i < len(res.Records); i++ {
		if res.Records[i].Fuel >= 0 {
			assert.GreaterOrEqual(t, res.Records[i].CumulativeFuel, res.Records[i-1].CumulativeFuel)
		}
	}
}

func TestNegativeFuelOnSteepDescent(t *testing.T) {
	// A light, slippery vehicle coasting down the highway grade has negative
	// total force, which yields negative fuel for that step. This is kept.
	p := vehicle.NewProfile(5000, 1.0, 1.0, 2.0, 0.5)
	res := run(t, p, vehicle.Trip{DistanceKm: 5, InitialSpeedKmh: 20, Scenario: vehicle.ScenarioHighway})

	negative := 0
	for _, r := range res.Records {
		if r.Slope < 0 && r.TotalResistance < 0 && r.Acceleration <= 0 {
			assert.Less(t, r.Fuel, 0.0)
			negative++
		}
	}
	assert.Greater(t, negative, 0)
}

func TestHighwayAltitude(t *testing.T) {
	res := run(t, referenceProfile(), referenceTrip(vehicle.ScenarioHighway))
	require.Len(t, res.Records, 720)

	peak := res.Records[179].Altitude
	assert.Greater(t, peak, 0.0)
	assert.Equal(t, peak, res.Records[359].Altitude, "level second quarter")

	// The descent is driven faster than the climb by the speed ramp, so the
	// run ends below its start rather than exactly at zero.
	end := res.Records[719].Altitude
	assert.Less(t, end, 0.0)
	assert.Less(t, math.Abs(end), peak)
}

func TestDegenerateRun(t *testing.T) {
	// 0.5 m at 50 km/h is less than one step.
	e, err := New(referenceProfile(), vehicle.Trip{DistanceKm: 0.0005, InitialSpeedKmh: 50, Scenario: vehicle.ScenarioUrban})
	require.NoError(t, err)
	assert.Equal(t, 0, e.StepCount())

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, StateCompleted, e.State())
}

func TestRunIsDeterministic(t *testing.T) {
	a := run(t, referenceProfile(), referenceTrip(vehicle.ScenarioSport))
	b := run(t, referenceProfile(), referenceTrip(vehicle.ScenarioSport))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestCustomConstants(t *testing.T) {
	thin := physics.DefaultConstants()
	thin.AirDensity = 0.6

	a := run(t, referenceProfile(), referenceTrip(vehicle.ScenarioUrban))
	b := run(t, referenceProfile(), referenceTrip(vehicle.ScenarioUrban), WithConstants(thin))

	opt := cmpopts.EquateApprox(0, 1e-9)
	assert.True(t, cmp.Equal(a.Records[10].Drag/2, b.Records[10].Drag, opt) || b.Records[10].Cd != a.Records[10].Cd)
	assert.Less(t, b.Records[len(b.Records)-1].CumulativeFuel, a.Records[len(a.Records)-1].CumulativeFuel)
}

func TestProgressReports(t *testing.T) {
	var got []Progress
	obs := ProgressFunc(func(p Progress) { got = append(got, p) })

	trip := vehicle.Trip{DistanceKm: 100, InitialSpeedKmh: 30, Scenario: vehicle.ScenarioSport}
	res := run(t, referenceProfile(), trip, WithObserver(obs))
	steps := res.Steps
	require.Equal(t, 12000, steps)

	require.Len(t, got, 4)
	assert.Equal(t, []int{0, 5000, 10000, steps - 1}, []int{got[0].Step, got[1].Step, got[2].Step, got[3].Step})
	assert.Equal(t, 0, got[0].Percent)
	assert.Equal(t, 41, got[1].Percent)
	assert.Equal(t, 99, got[3].Percent)
	assert.Equal(t, res.Records[5000].Speed, got[1].Speed)
}

func TestProgressInterval(t *testing.T) {
	count := 0
	obs := ProgressFunc(func(Progress) { count++ })
	run(t, referenceProfile(), referenceTrip(vehicle.ScenarioUrban), WithObserver(obs), WithProgressInterval(100))
	// steps 0,100,...,700 plus the final step 719
	assert.Equal(t, 9, count)
}

func TestChannelObserverNeverBlocks(t *testing.T) {
	obs := NewChannelObserver(1)
	run(t, referenceProfile(), referenceTrip(vehicle.ScenarioUrban), WithObserver(obs), WithProgressInterval(1))
	assert.Len(t, obs.C, 1)
	assert.Equal(t, int64(719), obs.Dropped())
}

func TestRunCancelled(t *testing.T) {
	e, err := New(referenceProfile(), referenceTrip(vehicle.ScenarioUrban))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := e.Run(ctx)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StateInitializing, e.State())
}

func TestValuesRoundTrip(t *testing.T) {
	res := run(t, referenceProfile(), referenceTrip(vehicle.ScenarioHighway))
	rec := res.Records[200]
	vals := rec.Values()
	require.Len(t, vals, len(Columns))

	back, ok := RecordFromValues(vals)
	require.True(t, ok)
	assert.Equal(t, rec, back)

	_, ok = RecordFromValues(vals[:5])
	assert.False(t, ok)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "stepping", StateStepping.String())
	assert.Equal(t, "state(7)", State(7).String())
}
