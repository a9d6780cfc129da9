package vehicle

// Range is a closed interval of accepted values.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in [Min, Max]. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) check(field string, v float64) error {
	if !r.Contains(v) {
		return &RangeError{Field: field, Value: v, Min: r.Min, Max: r.Max}
	}
	return nil
}

// Operating envelope accepted from users.
var (
	MassRange       = Range{500, 5000}
	WidthRange      = Range{1.0, 3.0}
	HeightRange     = Range{1.0, 3.0}
	LengthRange     = Range{2.0, 8.0}
	EfficiencyRange = Range{0.1, 0.5}
	DistanceRange   = Range{1, 500}
	SpeedRange      = Range{10, 200}
)

// Field names used in RangeError and prompts.
const (
	FieldMass       = "Mass"
	FieldWidth      = "Width"
	FieldHeight     = "Height"
	FieldLength     = "Length"
	FieldEfficiency = "Efficiency"
	FieldDistance   = "Distance"
	FieldSpeed      = "Speed"
)

// CheckProfileRanges rejects a profile outside the operating envelope.
// Fields are checked in prompt order so the first failure matches what an
// interactive user would see.
func CheckProfileRanges(p Profile) error {
	checks := []struct {
		field string
		r     Range
		v     float64
	}{
		{FieldMass, MassRange, p.mass},
		{FieldWidth, WidthRange, p.width},
		{FieldHeight, HeightRange, p.height},
		{FieldLength, LengthRange, p.length},
		{FieldEfficiency, EfficiencyRange, p.efficiency},
	}
	for _, c := range checks {
		if err := c.r.check(c.field, c.v); err != nil {
			return err
		}
	}
	return nil
}

// CheckTripRanges rejects a trip outside the operating envelope.
func CheckTripRanges(t Trip) error {
	if err := DistanceRange.check(FieldDistance, t.DistanceKm); err != nil {
		return err
	}
	if err := SpeedRange.check(FieldSpeed, t.InitialSpeedKmh); err != nil {
		return err
	}
	if !t.Scenario.Valid() {
		return ErrInvalidScenario
	}
	return nil
}

// CheckRanges applies CheckProfileRanges and CheckTripRanges.
func CheckRanges(p Profile, t Trip) error {
	if err := CheckProfileRanges(p); err != nil {
		return err
	}
	return CheckTripRanges(t)
}
