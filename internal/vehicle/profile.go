package vehicle

import (
	"fmt"
	"math"
)

// ProfileParams is the wire form of a Profile, used for JSON and storage.
type ProfileParams struct {
	Mass       float64 `json:"mass_kg"`
	Width      float64 `json:"width_m"`
	Height     float64 `json:"height_m"`
	Length     float64 `json:"length_m"`
	Efficiency float64 `json:"efficiency"`
}

// Profile is a vehicle's static geometry, mass and efficiency. The frontal
// area is derived once at construction; a Profile is never mutated.
type Profile struct {
	mass        float64
	width       float64
	height      float64
	length      float64
	efficiency  float64
	frontalArea float64
}

// NewProfile builds a Profile. It does not validate; call Validate or
// CheckRanges before handing the profile to an engine.
func NewProfile(mass, width, height, length, efficiency float64) Profile {
	return Profile{
		mass:        mass,
		width:       width,
		height:      height,
		length:      length,
		efficiency:  efficiency,
		frontalArea: width * height,
	}
}

// FromParams builds a Profile from its wire form.
func FromParams(p ProfileParams) Profile {
	return NewProfile(p.Mass, p.Width, p.Height, p.Length, p.Efficiency)
}

func (p Profile) Mass() float64        { return p.mass }
func (p Profile) Width() float64       { return p.width }
func (p Profile) Height() float64      { return p.height }
func (p Profile) Length() float64      { return p.length }
func (p Profile) Efficiency() float64  { return p.efficiency }
func (p Profile) FrontalArea() float64 { return p.frontalArea }

// Params returns the wire form of the profile.
func (p Profile) Params() ProfileParams {
	return ProfileParams{
		Mass:       p.mass,
		Width:      p.width,
		Height:     p.height,
		Length:     p.length,
		Efficiency: p.efficiency,
	}
}

// Validate checks the physical invariants: positive finite mass and
// dimensions, efficiency in (0,1].
func (p Profile) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"mass", p.mass},
		{"width", p.width},
		{"height", p.height},
		{"length", p.length},
	} {
		if !(f.v > 0) || math.IsInf(f.v, 1) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidInput, f.name, f.v)
		}
	}
	if !(p.efficiency > 0 && p.efficiency <= 1) {
		return fmt.Errorf("%w: efficiency must be in (0,1], got %g", ErrInvalidInput, p.efficiency)
	}
	return nil
}

func (p Profile) String() string {
	return fmt.Sprintf("mass=%gkg dims=%gx%gx%gm area=%gm^2 eff=%g",
		p.mass, p.width, p.height, p.length, p.frontalArea, p.efficiency)
}
