package physics

import "math"

// Drag coefficient breakpoints. Each band is closed below and open above.
const (
	ReynoldsBand1 = 2e6
	ReynoldsBand2 = 3e6
	ReynoldsBand3 = 4e6
)

// Drag coefficients returned by DragCoefficient, from low to high Reynolds number.
const (
	CdLowReynolds  = 0.38
	CdBand1        = 0.35
	CdBand2        = 0.32
	CdHighReynolds = 0.30
)

// ReynoldsNumber returns rho*v*L/mu for a vehicle of the given length.
func (c Constants) ReynoldsNumber(speed, length float64) float64 {
	return (c.AirDensity * speed * length) / c.AirViscosity
}

// DragCoefficient selects Cd from the Reynolds number. It is a step function
// with no interpolation between bands.
func DragCoefficient(re float64) float64 {
	switch {
	case re < ReynoldsBand1:
		return CdLowReynolds
	case re < ReynoldsBand2:
		return CdBand1
	case re < ReynoldsBand3:
		return CdBand2
	default:
		return CdHighReynolds
	}
}

// AerodynamicDrag returns 0.5*rho*Cd*A*v^2 in newtons.
func (c Constants) AerodynamicDrag(cd, frontalArea, speed float64) float64 {
	return 0.5 * c.AirDensity * cd * frontalArea * speed * speed
}

// RollingResistance returns Crr*m*g*cos(theta) in newtons.
func (c Constants) RollingResistance(mass, slopeAngle float64) float64 {
	return c.RollingResistanceCoeff * mass * c.Gravity * math.Cos(slopeAngle)
}

// SlopeResistance returns m*g*sin(theta) in newtons. It is negative downhill.
func (c Constants) SlopeResistance(mass, slopeAngle float64) float64 {
	return mass * c.Gravity * math.Sin(slopeAngle)
}

// Forces is the resistance breakdown for one instant.
type Forces struct {
	Reynolds float64
	Cd       float64
	Drag     float64
	Rolling  float64
	Slope    float64
}

// Total is drag + rolling + slope. The slope term may make it negative.
func (f Forces) Total() float64 {
	return f.Drag + f.Rolling + f.Slope
}

// Resistance evaluates the full force model for a body of the given mass,
// length and frontal area moving at speed on a grade of slopeAngle radians.
func (c Constants) Resistance(mass, length, frontalArea, speed, slopeAngle float64) Forces {
	re := c.ReynoldsNumber(speed, length)
	cd := DragCoefficient(re)
	return Forces{
		Reynolds: re,
		Cd:       cd,
		Drag:     c.AerodynamicDrag(cd, frontalArea, speed),
		Rolling:  c.RollingResistance(mass, slopeAngle),
		Slope:    c.SlopeResistance(mass, slopeAngle),
	}
}
