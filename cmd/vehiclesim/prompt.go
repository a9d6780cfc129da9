package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

// errNoInput is returned when stdin closes before a value is read.
var errNoInput = errors.New("no input")

// prompter reads whitespace-separated answers from r, writing each prompt
// to w first.
type prompter struct {
	sc *bufio.Scanner
	w  io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &prompter{sc: sc, w: w}
}

func (p *prompter) word(prompt string) (string, error) {
	fmt.Fprint(p.w, prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", errNoInput
	}
	return p.sc.Text(), nil
}

func (p *prompter) float(prompt string) (float64, error) {
	s, err := p.word(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", vehicle.ErrInvalidInput, s)
	}
	return v, nil
}

func (p *prompter) int(prompt string) (int, error) {
	s, err := p.word(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", vehicle.ErrInvalidInput, s)
	}
	return v, nil
}

// yes asks a 1/0 question. Anything but 1, including end of input, is no.
func (p *prompter) yes(prompt string) bool {
	v, err := p.int(prompt)
	return err == nil && v == 1
}

// ranged reads a float and checks it against r.
func (p *prompter) ranged(prompt, field string, r vehicle.Range) (float64, error) {
	v, err := p.float(prompt)
	if err != nil {
		return 0, err
	}
	if !r.Contains(v) {
		return 0, &vehicle.RangeError{Field: field, Value: v, Min: r.Min, Max: r.Max}
	}
	return v, nil
}

// readProfile prompts for the vehicle parameters, stopping at the first
// value outside its range.
func (p *prompter) readProfile() (vehicle.Profile, error) {
	fields := []struct {
		prompt string
		field  string
		r      vehicle.Range
	}{
		{"Vehicle mass (kg) [500-5000]: ", vehicle.FieldMass, vehicle.MassRange},
		{"Vehicle width (m) [1.0-3.0]: ", vehicle.FieldWidth, vehicle.WidthRange},
		{"Vehicle height (m) [1.0-3.0]: ", vehicle.FieldHeight, vehicle.HeightRange},
		{"Vehicle length (m) [2.0-8.0]: ", vehicle.FieldLength, vehicle.LengthRange},
		{"Engine efficiency [0.1-0.5]: ", vehicle.FieldEfficiency, vehicle.EfficiencyRange},
	}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := p.ranged(f.prompt, f.field, f.r)
		if err != nil {
			return vehicle.Profile{}, err
		}
		vals[i] = v
	}
	return vehicle.NewProfile(vals[0], vals[1], vals[2], vals[3], vals[4]), nil
}

// readTrip prompts for distance, speed and scenario.
func (p *prompter) readTrip(menu func(io.Writer)) (vehicle.Trip, error) {
	distance, err := p.ranged("Travel distance (km) [1-500]: ", vehicle.FieldDistance, vehicle.DistanceRange)
	if err != nil {
		return vehicle.Trip{}, err
	}
	speed, err := p.ranged("Initial speed (km/h) [10-200]: ", vehicle.FieldSpeed, vehicle.SpeedRange)
	if err != nil {
		return vehicle.Trip{}, err
	}
	menu(p.w)
	id, err := p.int("Choose scenario (1-3): ")
	if err != nil {
		return vehicle.Trip{}, err
	}
	s := vehicle.Scenario(id)
	if !s.Valid() {
		return vehicle.Trip{}, vehicle.ErrInvalidScenario
	}
	return vehicle.Trip{DistanceKm: distance, InitialSpeedKmh: speed, Scenario: s}, nil
}
