package physics

import "fmt"

// Work returns force*distance in joules.
func Work(force, distance float64) float64 {
	return force * distance
}

// FuelEnergy returns the chemical energy needed to deliver work at the
// given efficiency. Efficiency must be positive.
func FuelEnergy(work, efficiency float64) (float64, error) {
	if !(efficiency > 0) {
		return 0, fmt.Errorf("%w: efficiency must be positive, got %g", ErrDomain, efficiency)
	}
	return work / efficiency, nil
}

// FuelMass converts chemical energy to fuel mass in kg.
func (c Constants) FuelMass(energy float64) float64 {
	return energy / c.HeatingValue
}

// FuelVolume converts fuel mass to litres.
func (c Constants) FuelVolume(mass float64) float64 {
	return mass / c.FuelDensity
}

// FuelForWork runs the whole chain work -> energy -> mass -> volume and
// returns litres. Negative work yields negative fuel; no floor is applied.
func (c Constants) FuelForWork(work, efficiency float64) (float64, error) {
	energy, err := FuelEnergy(work, efficiency)
	if err != nil {
		return 0, err
	}
	return c.FuelVolume(c.FuelMass(energy)), nil
}
