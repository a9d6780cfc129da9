// Package physics implements the longitudinal force model (aerodynamic drag,
// rolling and grade resistance) and the work-to-fuel energy chain.
//
// All functions are pure. Physical constants are carried in an immutable
// Constants value rather than package globals so that a run can be replayed
// with a different atmosphere or fuel.
package physics

import (
	"errors"
	"fmt"
)

// Constants is the block of physical constants used by the force and
// energy models.
type Constants struct {
	AirDensity             float64 `json:"air_density"`              // kg/m^3
	AirViscosity           float64 `json:"air_viscosity"`            // Pa*s
	Gravity                float64 `json:"gravity"`                  // m/s^2
	RollingResistanceCoeff float64 `json:"rolling_resistance_coeff"` // dimensionless
	FuelDensity            float64 `json:"fuel_density"`             // kg/L
	HeatingValue           float64 `json:"heating_value"`            // J/kg
}

// Default constant values.
const (
	DefaultAirDensity             = 1.20
	DefaultAirViscosity           = 1.81e-5
	DefaultGravity                = 9.81
	DefaultRollingResistanceCoeff = 0.015
	DefaultFuelDensity            = 0.74
	DefaultHeatingValue           = 44000000.0
)

// DefaultConstants returns sea-level air and a petrol-like fuel.
func DefaultConstants() Constants {
	return Constants{
		AirDensity:             DefaultAirDensity,
		AirViscosity:           DefaultAirViscosity,
		Gravity:                DefaultGravity,
		RollingResistanceCoeff: DefaultRollingResistanceCoeff,
		FuelDensity:            DefaultFuelDensity,
		HeatingValue:           DefaultHeatingValue,
	}
}

// ErrDomain is returned when an input would make the energy chain divide by
// zero or otherwise leave the real numbers.
var ErrDomain = errors.New("physics: domain error")

// Validate checks that every constant is usable as a divisor or scale.
// The rolling coefficient may be zero; nothing else may.
func (c Constants) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"air_density", c.AirDensity},
		{"air_viscosity", c.AirViscosity},
		{"gravity", c.Gravity},
		{"fuel_density", c.FuelDensity},
		{"heating_value", c.HeatingValue},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrDomain, p.name, p.v)
		}
	}
	if !(c.RollingResistanceCoeff >= 0) {
		return fmt.Errorf("%w: rolling_resistance_coeff must be non-negative, got %g", ErrDomain, c.RollingResistanceCoeff)
	}
	return nil
}
