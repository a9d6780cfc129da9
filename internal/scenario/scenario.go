// Package scenario generates the commanded speed and terrain grade that
// drive a simulation run. Both generators are pure functions of the
// scenario id and the step's own index or time.
package scenario

import (
	"math"

	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

// MinSpeed is the floor applied to every commanded speed, in m/s.
const MinSpeed = 1.0

// Urban profile phase boundaries, as fractions of the run.
const (
	urbanRampUpEnd   = 0.2
	urbanRampDownBeg = 0.8
	urbanStartRatio  = 0.3
)

// Highway ramp slope in m/s per step.
const highwayRamp = 0.02

// Sport speed modulation depth.
const sportAmplitude = 0.3

// Grades in radians.
const (
	highwayGrade   = 0.02
	sportGradeAmpl = 0.03
)

// Speed returns the commanded speed in m/s for step of totalSteps.
//
// Urban ramps from 30% to 100% of baseSpeed over the first fifth of the
// run, cruises, then ramps towards zero over the last fifth. Highway adds a
// triangular ramp of 0.02 m/s per step peaking at the midpoint. Sport
// modulates baseSpeed by 1+0.3*sin(4*pi*progress). The result is never
// below MinSpeed.
func Speed(s vehicle.Scenario, step, totalSteps int, baseSpeed float64) float64 {
	speed := baseSpeed
	progress := 0.0
	if totalSteps > 0 {
		progress = float64(step) / float64(totalSteps)
	}
	n := float64(totalSteps)
	i := float64(step)

	switch s {
	case vehicle.ScenarioUrban:
		switch {
		case i < n*urbanRampUpEnd:
			speed = baseSpeed * (urbanStartRatio + (1-urbanStartRatio)*progress*5)
		case i < n*urbanRampDownBeg:
			speed = baseSpeed
		default:
			speed = baseSpeed * (1.0 - (progress-urbanRampDownBeg)*5)
		}
	case vehicle.ScenarioHighway:
		// Integer midpoint: odd step counts peak on the lower half.
		mid := totalSteps / 2
		if step < mid {
			speed += highwayRamp * i
		} else {
			speed += highwayRamp*float64(mid) - highwayRamp*float64(step-mid)
		}
	case vehicle.ScenarioSport:
		speed = baseSpeed * (1.0 + sportAmplitude*math.Sin(4*math.Pi*progress))
	}

	if speed < MinSpeed {
		speed = MinSpeed
	}
	return speed
}

// Slope returns the terrain grade in radians at currentTime of a run lasting
// totalTime seconds. Positive is uphill.
//
// Urban is flat. Highway climbs at 0.02 rad for the first quarter, is level
// for the second, descends at 0.02 rad for the third and is level for the
// last. Sport oscillates as 0.03*sin(2*pi*t/(T/3)), three full periods per run.
func Slope(s vehicle.Scenario, currentTime, totalTime float64) float64 {
	switch s {
	case vehicle.ScenarioHighway:
		switch {
		case currentTime < totalTime*0.25:
			return highwayGrade
		case currentTime < totalTime*0.5:
			return 0
		case currentTime < totalTime*0.75:
			return -highwayGrade
		default:
			return 0
		}
	case vehicle.ScenarioSport:
		return sportGradeAmpl * math.Sin(2*math.Pi*currentTime/(totalTime/3))
	default:
		return 0
	}
}
