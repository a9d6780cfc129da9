package sim

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/banshee-data/vehicle.sim/internal/monitoring"
	"github.com/banshee-data/vehicle.sim/internal/physics"
	"github.com/banshee-data/vehicle.sim/internal/scenario"
	"github.com/banshee-data/vehicle.sim/internal/units"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

// DefaultTimeStep is the integration step in seconds.
const DefaultTimeStep = 1.0

// MaxSteps bounds the iteration count of a single run. The largest trip
// accepted by vehicle.CheckRanges needs 180000 steps at the default dt.
const MaxSteps = 5_000_000

// cancelCheckInterval is how often, in steps, Run polls its context.
const cancelCheckInterval = 1024

// State is the lifecycle state of an Engine.
type State int

const (
	StateInitializing State = iota
	StateStepping
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateStepping:
		return "stepping"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine runs the fixed-step integration for one vehicle and trip.
type Engine struct {
	profile       vehicle.Profile
	trip          vehicle.Trip
	consts        physics.Constants
	dt            float64
	progressEvery int
	observer      ProgressObserver

	mu    sync.Mutex
	state State
}

// Option configures an Engine.
type Option func(*Engine)

// WithConstants replaces the default physical constants.
func WithConstants(c physics.Constants) Option {
	return func(e *Engine) { e.consts = c }
}

// WithObserver sets the progress observer. A nil observer disables reports.
func WithObserver(o ProgressObserver) Option {
	return func(e *Engine) { e.observer = o }
}

// WithProgressInterval sets the number of steps between progress reports.
// Values below one are ignored.
func WithProgressInterval(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.progressEvery = n
		}
	}
}

// WithTimeStep overrides the integration step in seconds. Non-positive
// values are ignored.
func WithTimeStep(dt float64) Option {
	return func(e *Engine) {
		if dt > 0 {
			e.dt = dt
		}
	}
}

// New validates its inputs and builds an Engine. Invalid profiles or trips,
// including trips needing more than MaxSteps steps, fail with an error
// wrapping vehicle.ErrInvalidInput. Unusable constants fail with
// physics.ErrDomain.
func New(profile vehicle.Profile, trip vehicle.Trip, opts ...Option) (*Engine, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("vehicle profile: %w", err)
	}
	if err := trip.Validate(); err != nil {
		return nil, fmt.Errorf("trip: %w", err)
	}

	e := &Engine{
		profile:       profile,
		trip:          trip,
		consts:        physics.DefaultConstants(),
		dt:            DefaultTimeStep,
		progressEvery: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.consts.Validate(); err != nil {
		return nil, fmt.Errorf("constants: %w", err)
	}
	if n := e.TotalTime() / e.dt; n > MaxSteps {
		return nil, fmt.Errorf("%w: trip needs %.0f steps, limit is %d", vehicle.ErrInvalidInput, n, MaxSteps)
	}
	return e, nil
}

// Profile returns the vehicle being simulated.
func (e *Engine) Profile() vehicle.Profile { return e.profile }

// Trip returns the trip being simulated.
func (e *Engine) Trip() vehicle.Trip { return e.trip }

// Constants returns the physical constants in use.
func (e *Engine) Constants() physics.Constants { return e.consts }

// State returns the engine's lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// BaseSpeed is the trip's initial speed in m/s.
func (e *Engine) BaseSpeed() float64 {
	return units.KMPHToMPS(e.trip.InitialSpeedKmh)
}

// TotalTime is the nominal trip duration: distance over initial speed.
func (e *Engine) TotalTime() float64 {
	return units.KMToMeters(e.trip.DistanceKm) / e.BaseSpeed()
}

// StepCount is floor(TotalTime / dt). It is computed once from the initial
// speed and is the whole iteration budget of a run.
func (e *Engine) StepCount() int {
	return int(math.Floor(e.TotalTime() / e.dt))
}

// loop holds the accumulators carried from one step to the next.
type loop struct {
	prevSpeed      float64
	altitude       float64
	cumulativeFuel float64
}

// Run executes the simulation to completion and returns every step record.
// A run whose step count is zero returns an empty Result and no error. The
// only error is cancellation of ctx, after which the partial result is
// discarded.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	steps := e.StepCount()
	totalTime := e.TotalTime()
	base := e.BaseSpeed()

	res := &Result{
		Steps:     steps,
		TimeStep:  e.dt,
		TotalTime: totalTime,
		Records:   make([]StepRecord, 0, max(steps, 0)),
	}

	e.setState(StateStepping)
	monitoring.Debugf("[sim] %s scenario: %d steps of %gs over %gs", e.trip.Scenario, steps, e.dt, totalTime)
	st := loop{prevSpeed: base}

	for i := 0; i < steps; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				e.setState(StateInitializing)
				return nil, fmt.Errorf("simulation stopped at step %d of %d: %w", i, steps, err)
			}
		}

		rec, err := e.step(i, steps, totalTime, base, &st)
		if err != nil {
			e.setState(StateInitializing)
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		res.Records = append(res.Records, rec)

		if e.observer != nil && (i%e.progressEvery == 0 || i == steps-1) {
			e.observer.Progress(Progress{
				Step:    i,
				Steps:   steps,
				Percent: i * 100 / steps,
				Time:    rec.Time,
				Speed:   rec.Speed,
			})
		}
	}

	e.setState(StateCompleted)
	monitoring.Debugf("[sim] completed %d steps", len(res.Records))
	return res, nil
}

// step advances the simulation by one dt and returns the record for step i.
func (e *Engine) step(i, steps int, totalTime, base float64, st *loop) (StepRecord, error) {
	speed := scenario.Speed(e.trip.Scenario, i, steps, base)
	currentTime := float64(i) * e.dt
	slopeAngle := scenario.Slope(e.trip.Scenario, currentTime, totalTime)
	acceleration := (speed - st.prevSpeed) / e.dt

	forces := e.consts.Resistance(
		e.profile.Mass(),
		e.profile.Length(),
		e.profile.FrontalArea(),
		speed,
		slopeAngle,
	)

	dx := speed * e.dt
	st.altitude += dx * math.Sin(slopeAngle)

	// Tractive force to accelerate the mass is added on acceleration only;
	// no inertial credit is taken while decelerating.
	totalForce := forces.Total()
	if acceleration > 0 {
		totalForce += e.profile.Mass() * acceleration
	}

	fuel, err := e.consts.FuelForWork(physics.Work(totalForce, dx), e.profile.Efficiency())
	if err != nil {
		return StepRecord{}, err
	}
	st.cumulativeFuel += fuel
	st.prevSpeed = speed

	return StepRecord{
		Time:              currentTime,
		Speed:             speed,
		Acceleration:      acceleration,
		Drag:              forces.Drag,
		RollingResistance: forces.Rolling,
		SlopeResistance:   forces.Slope,
		TotalResistance:   forces.Total(),
		Fuel:              fuel,
		CumulativeFuel:    st.cumulativeFuel,
		Reynolds:          forces.Reynolds,
		Cd:                forces.Cd,
		Altitude:          st.altitude,
		Slope:             slopeAngle,
	}, nil
}

// Simulate is a convenience wrapper that builds an Engine and runs it with
// a background context.
func Simulate(profile vehicle.Profile, trip vehicle.Trip, opts ...Option) (*Result, error) {
	e, err := New(profile, trip, opts...)
	if err != nil {
		return nil, err
	}
	return e.Run(context.Background())
}
