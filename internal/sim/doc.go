// Package sim implements the fixed-step longitudinal vehicle simulation.
//
// An Engine is built from an immutable vehicle.Profile and vehicle.Trip.
// Run steps forward in time at a fixed dt, pulling the commanded speed and
// terrain grade from package scenario, resistance forces and fuel from
// package physics, and emits one StepRecord per step.
//
// The number of steps is fixed up front as floor(distance / initial speed / dt)
// and is not revised as the commanded speed varies. The distance actually
// covered therefore differs from the requested trip distance for every
// scenario whose mean speed is not the initial speed.
//
// # Cross-step state
//
// Each record depends only on the previous step's speed (for acceleration)
// and two running sums: altitude and cumulative fuel. These are owned by the
// Run call; an Engine holds no mutable state between runs beyond its State.
package sim
