package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/vehicle.sim/internal/fsutil"
	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/units"
)

// ReportFileName is the conventional name of a run's text report.
func ReportFileName(label string) string {
	return "summary_report_" + label + ".txt"
}

// Analysis writes the detailed analysis as a plain-text report.
func Analysis(w io.Writer, label string, a *stats.Analysis) error {
	ew := &errWriter{w: w}
	s := a.Summary

	ew.printf("VEHICLE SIMULATION ANALYSIS REPORT\n")
	ew.printf("%s\n", Rule)
	ew.printf("Run: %s\n\n", label)

	ew.printf("FUEL & ENERGY\n")
	ew.printf("  Total fuel: %.4f L\n", s.TotalFuel)
	ew.printf("  Fuel efficiency: %.4f L/100km\n", s.FuelPer100km)
	ew.printf("  Energy efficiency: %.4f km/MJ\n", a.EnergyEfficiency)
	ew.printf("  Estimated cost: %.2f\n", a.Cost)
	ew.printf("  CO2 emissions: %.3f kg\n\n", a.CO2)

	ew.printf("DISTANCE & SPEED\n")
	ew.printf("  Total distance: %.3f km\n", units.MetersToKM(s.TotalDistance))
	describe(ew, "Speed (m/s)", a.Speed)
	ew.printf("  Average speed: %.2f km/h\n\n", units.MPSToKMPH(a.Speed.Mean))

	ew.printf("ACCELERATION\n")
	ew.printf("  Avg acceleration: %.4f m/s^2\n", a.Acceleration.AvgAcceleration)
	ew.printf("  Avg deceleration: %.4f m/s^2\n", a.Acceleration.AvgDeceleration)
	ew.printf("  Max acceleration: %.4f m/s^2\n", a.Acceleration.MaxAcceleration)
	ew.printf("  Max deceleration: %.4f m/s^2\n\n", a.Acceleration.MaxDeceleration)

	ew.printf("FORCES\n")
	describe(ew, "Drag (N)", a.Drag)
	describe(ew, "Reynolds", a.Reynolds)
	if r := a.Resistance; r != nil {
		ew.printf("  Resistance breakdown: drag %.1f%%, rolling %.1f%%, slope %.1f%%\n", r.DragPct, r.RollingPct, r.SlopePct)
	}
	ew.printf("\n")

	ew.printf("TERRAIN\n")
	describe(ew, "Altitude (m)", a.Altitude)
	ew.printf("  Altitude change: %.2f m\n\n", s.AltitudeChange())

	if p := a.Peak; p != nil {
		ew.printf("PEAK CONSUMPTION\n")
		ew.printf("  Window: %.0fs - %.0fs\n", p.StartTime, p.EndTime)
		ew.printf("  Consumption: %.4f L\n\n", p.Consumption)
	}

	ew.printf("CORRELATIONS\n")
	ew.printf("  Speed vs fuel: %.3f\n", a.Correlations.SpeedFuel)
	ew.printf("  Speed vs drag: %.3f\n", a.Correlations.SpeedDrag)
	ew.printf("  Reynolds vs Cd: %.3f\n", a.Correlations.ReynoldsCd)
	ew.printf("  Slope vs fuel: %.3f\n", a.Correlations.SlopeFuel)
	return ew.err
}

// SaveAnalysis writes the text report for label into dir.
func SaveAnalysis(fsys fsutil.FileSystem, dir, label string, a *stats.Analysis) (string, error) {
	return saveFile(fsys, dir, ReportFileName(label), func(w io.Writer) error {
		return Analysis(w, label, a)
	})
}

func describe(ew *errWriter, name string, b stats.Basic) {
	ew.printf("  %s: mean %.4f, median %.4f, std %.4f, min %.4f, max %.4f\n",
		name, b.Mean, b.Median, b.StdDev, b.Min, b.Max)
}

// errWriter latches the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, v ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, v...)
}
