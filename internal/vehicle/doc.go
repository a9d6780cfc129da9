// Package vehicle holds the immutable inputs of a simulation run: the
// vehicle's geometry, mass and drivetrain efficiency, and the trip to drive.
//
// Two levels of checking are provided. Profile.Validate and Trip.Validate
// enforce the physical invariants the simulation core relies on (positive
// dimensions, efficiency in (0,1], a known scenario). CheckRanges enforces
// the narrower operating envelope accepted from users at the CLI and API.
package vehicle
