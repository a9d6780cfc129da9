package plot

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"

	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/units"
)

// Comparison builds the comparison sheet for several runs: speed,
// cumulative fuel, drag and altitude overlaid against time, then a bar of
// each run's total fuel. Runs are drawn in label order, one colour each.
func Comparison(runs map[string][]sim.StepRecord) ([]*plot.Plot, error) {
	labels := runLabels(runs)
	if len(labels) == 0 {
		return nil, ErrNoData
	}
	colors := generateColors(len(labels))

	speed := newPlot("Speed Comparison", "Time (s)", "Speed (km/h)")
	fuel := newPlot("Fuel Consumption Comparison", "Time (s)", "Cumulative fuel (L)")
	drag := newPlot("Drag Force Comparison", "Time (s)", "Drag force (N)")
	terrain := newPlot("Altitude Comparison", "Time (s)", "Altitude (m)")

	totals := make([]float64, len(labels))
	for i, label := range labels {
		recs := runs[label]
		totals[i] = recs[len(recs)-1].CumulativeFuel
		if err := addLines(speed, series{label, colors[i], timeSeries(recs, func(r sim.StepRecord) float64 {
			return units.MPSToKMPH(r.Speed)
		})}); err != nil {
			return nil, err
		}
		if err := addLines(fuel, series{label, colors[i], timeSeries(recs, func(r sim.StepRecord) float64 {
			return r.CumulativeFuel
		})}); err != nil {
			return nil, err
		}
		if err := addLines(drag, series{label, colors[i], timeSeries(recs, func(r sim.StepRecord) float64 {
			return r.Drag
		})}); err != nil {
			return nil, err
		}
		if err := addLines(terrain, series{label, colors[i], timeSeries(recs, func(r sim.StepRecord) float64 {
			return r.Altitude
		})}); err != nil {
			return nil, err
		}
	}

	total := newPlot("Total Fuel Comparison", "", "Total fuel (L)")
	if err := addBars(total, labels, totals, colors); err != nil {
		return nil, fmt.Errorf("total fuel: %w", err)
	}
	return []*plot.Plot{speed, fuel, drag, total, terrain}, nil
}

// runLabels returns the labels of non-empty runs in sorted order.
func runLabels(runs map[string][]sim.StepRecord) []string {
	labels := make([]string, 0, len(runs))
	for label, recs := range runs {
		if len(recs) > 0 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// generateColors spreads n colours evenly around the hue circle.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := range colors {
		r, g, b := hslToRGB(float64(i)/float64(n), 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

// ComparisonFileName is the conventional name of a comparison sheet.
func ComparisonFileName(labels ...string) string {
	name := "comparison"
	for _, l := range labels {
		name += "_" + l
	}
	return fmt.Sprintf("%s.png", name)
}
