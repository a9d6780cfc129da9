// Package plot renders step records to PNG charts with gonum/plot: a
// twelve-panel analysis sheet per run and a sheet comparing runs.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/units"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no records to plot")

// Sheet dimensions.
const (
	SheetWidth  = 20 * vg.Inch
	SheetHeight = 16 * vg.Inch
	PanelWidth  = 14 * vg.Inch
	PanelHeight = 6 * vg.Inch

	// SheetColumns is the number of panels per row of an analysis sheet.
	SheetColumns = 3

	histogramBins = 30
)

var (
	colorSpeed   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorDrag    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorRolling = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorSlope   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorFuel    = color.RGBA{R: 148, G: 103, B: 189, A: 255}
	colorTerrain = color.RGBA{R: 140, G: 86, B: 75, A: 255}
)

// series is one line of a panel.
type series struct {
	label string
	color color.Color
	pts   plotter.XYs
}

func timeSeries(records []sim.StepRecord, field func(sim.StepRecord) float64) plotter.XYs {
	pts := make(plotter.XYs, len(records))
	for i, r := range records {
		pts[i] = plotter.XY{X: r.Time, Y: field(r)}
	}
	return pts
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}

func addLines(p *plot.Plot, lines ...series) error {
	for _, s := range lines {
		if len(s.pts) == 0 {
			continue
		}
		l, err := plotter.NewLine(s.pts)
		if err != nil {
			return fmt.Errorf("%s: %w", s.label, err)
		}
		l.Color = s.color
		l.Width = vg.Points(1)
		p.Add(l)
		if s.label != "" {
			p.Legend.Add(s.label, l)
		}
	}
	return nil
}

// Panels builds the twelve analysis panels for one run, in display order:
// speed, cumulative fuel, resistance forces, acceleration, Cd against
// Reynolds number, altitude, speed distribution, fuel against speed,
// Reynolds distribution, total resistance, resistance breakdown and rolling
// fuel rate over window steps. A window below one uses the default peak
// window.
func Panels(records []sim.StepRecord, window int) ([]*plot.Plot, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}
	if window < 1 {
		window = stats.DefaultPeakWindow
	}

	speed := newPlot("Speed Profile", "Time (s)", "Speed (km/h)")
	if err := addLines(speed, series{"speed", colorSpeed, timeSeries(records, func(r sim.StepRecord) float64 {
		return units.MPSToKMPH(r.Speed)
	})}); err != nil {
		return nil, err
	}

	fuel := newPlot("Cumulative Fuel", "Time (s)", "Fuel (L)")
	if err := addLines(fuel, series{"fuel", colorFuel, timeSeries(records, func(r sim.StepRecord) float64 {
		return r.CumulativeFuel
	})}); err != nil {
		return nil, err
	}

	forces := newPlot("Resistance Forces", "Time (s)", "Force (N)")
	if err := addLines(forces,
		series{"drag", colorDrag, timeSeries(records, func(r sim.StepRecord) float64 { return r.Drag })},
		series{"rolling", colorRolling, timeSeries(records, func(r sim.StepRecord) float64 { return r.RollingResistance })},
		series{"slope", colorSlope, timeSeries(records, func(r sim.StepRecord) float64 { return r.SlopeResistance })},
	); err != nil {
		return nil, err
	}

	accel := newPlot("Acceleration Profile", "Time (s)", "Acceleration (m/s²)")
	if err := addLines(accel, series{"", colorSpeed, timeSeries(records, func(r sim.StepRecord) float64 {
		return r.Acceleration
	})}); err != nil {
		return nil, err
	}
	if err := addZeroLine(accel, records[0].Time, records[len(records)-1].Time); err != nil {
		return nil, err
	}

	cd := newPlot("Drag Coefficient vs Reynolds", "Reynolds number", "Cd")
	if err := addScatter(cd, colorDrag, records, func(r sim.StepRecord) (float64, float64) {
		return r.Reynolds, r.Cd
	}); err != nil {
		return nil, fmt.Errorf("cd scatter: %w", err)
	}

	terrain := newPlot("Altitude Profile", "Time (s)", "Altitude (m)")
	if err := addLines(terrain, series{"altitude", colorTerrain, timeSeries(records, func(r sim.StepRecord) float64 {
		return r.Altitude
	})}); err != nil {
		return nil, err
	}

	speedHist := newPlot("Speed Distribution", "Speed (m/s)", "Frequency")
	if err := addHistogram(speedHist, colorSpeed, stats.Series(records, func(r sim.StepRecord) float64 {
		return r.Speed
	})); err != nil {
		return nil, fmt.Errorf("speed histogram: %w", err)
	}

	fuelSpeed := newPlot("Fuel Consumption vs Speed", "Speed (m/s)", "Fuel per step (L)")
	if err := addScatter(fuelSpeed, colorRolling, records, func(r sim.StepRecord) (float64, float64) {
		return r.Speed, r.Fuel
	}); err != nil {
		return nil, fmt.Errorf("fuel scatter: %w", err)
	}

	reHist := newPlot("Reynolds Number Distribution", "Reynolds number", "Frequency")
	if err := addHistogram(reHist, colorDrag, stats.Series(records, func(r sim.StepRecord) float64 {
		return r.Reynolds
	})); err != nil {
		return nil, fmt.Errorf("reynolds histogram: %w", err)
	}

	total := newPlot("Total Resistance Force", "Time (s)", "Total resistance (N)")
	if err := addLines(total, series{"", colorFuel, timeSeries(records, func(r sim.StepRecord) float64 {
		return r.TotalResistance
	})}); err != nil {
		return nil, err
	}

	breakdown := newPlot("Resistance Force Breakdown", "", "Share of total (%)")
	if b := stats.Breakdown(
		stats.Series(records, func(r sim.StepRecord) float64 { return r.Drag }),
		stats.Series(records, func(r sim.StepRecord) float64 { return r.RollingResistance }),
		stats.Series(records, func(r sim.StepRecord) float64 { return r.SlopeResistance }),
	); b != nil {
		if err := addBars(breakdown,
			[]string{"Aerodynamic", "Rolling", "Slope"},
			[]float64{b.DragPct, b.RollingPct, b.SlopePct},
			[]color.Color{colorDrag, colorRolling, colorSlope},
		); err != nil {
			return nil, fmt.Errorf("resistance breakdown: %w", err)
		}
	}

	rate := newPlot(fmt.Sprintf("Rolling Fuel Consumption (%d s window)", window), "Time (s)", "L/100km")
	rolling := stats.RollingFuelRate(records, window)
	ratePts := make(plotter.XYs, len(rolling))
	for i, v := range rolling {
		ratePts[i] = plotter.XY{X: records[i+window].Time, Y: v}
	}
	if err := addLines(rate, series{"L/100km", colorSpeed, ratePts}); err != nil {
		return nil, err
	}

	return []*plot.Plot{
		speed, fuel, forces,
		accel, cd, terrain,
		speedHist, fuelSpeed, reHist,
		total, breakdown, rate,
	}, nil
}

func addZeroLine(p *plot.Plot, from, to float64) error {
	l, err := plotter.NewLine(plotter.XYs{{X: from, Y: 0}, {X: to, Y: 0}})
	if err != nil {
		return err
	}
	l.Color = color.Gray{Y: 96}
	l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(l)
	return nil
}

func addScatter(p *plot.Plot, c color.Color, records []sim.StepRecord, xy func(sim.StepRecord) (float64, float64)) error {
	pts := make(plotter.XYs, len(records))
	for i, r := range records {
		pts[i].X, pts[i].Y = xy(r)
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(sc)
	return nil
}

func addHistogram(p *plot.Plot, c color.Color, values []float64) error {
	h, err := plotter.NewHist(plotter.Values(values), histogramBins)
	if err != nil {
		return err
	}
	h.FillColor = c
	h.LineStyle.Color = color.Black
	p.Add(h)
	return nil
}

// addBars draws one bar per label, each in its own colour.
func addBars(p *plot.Plot, labels []string, values []float64, colors []color.Color) error {
	for i, v := range values {
		bar, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(30))
		if err != nil {
			return fmt.Errorf("%s: %w", labels[i], err)
		}
		bar.XMin = float64(i)
		bar.Color = colors[i%len(colors)]
		bar.LineStyle.Width = 0
		p.Add(bar)
	}
	p.NominalX(labels...)
	return nil
}

// WriteSheet lays plots out in a grid with the given number of columns and
// writes the sheet to w as PNG.
func WriteSheet(w io.Writer, plots []*plot.Plot, cols int, width, height vg.Length) error {
	if len(plots) == 0 {
		return ErrNoData
	}
	if cols <= 0 {
		cols = 1
	}
	rows := (len(plots) + cols - 1) / cols
	grid := make([][]*plot.Plot, rows)
	for i := range grid {
		grid[i] = make([]*plot.Plot, cols)
	}
	for i, p := range plots {
		grid[i/cols][i%cols] = p
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, dc)
	for r := range grid {
		for c, p := range grid[r] {
			if p != nil {
				p.Draw(canvases[r][c])
			}
		}
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePanel writes a single plot to w as PNG.
func WritePanel(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(PanelWidth, PanelHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
