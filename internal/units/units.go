// Package units provides shared constants, validation and conversions for
// speed and distance units.
package units

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mps, mph, kmph, kph"
}

// KMPHToMPS converts km/h to m/s. The multiply-then-divide order is kept so
// that whole km/h inputs convert identically to legacy runs.
func KMPHToMPS(kmph float64) float64 {
	return kmph * 1000.0 / 3600.0
}

// MPSToKMPH converts m/s to km/h.
func MPSToKMPH(mps float64) float64 {
	return mps * 3.6
}

// KMToMeters converts kilometres to metres.
func KMToMeters(km float64) float64 {
	return km * 1000.0
}

// MetersToKM converts metres to kilometres.
func MetersToKM(m float64) float64 {
	return m / 1000.0
}

// ConvertSpeed converts a speed from meters per second to the target units.
// Simulation records always carry speeds in m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return MPSToKMPH(speedMPS)
	default:
		return speedMPS
	}
}
