package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/units"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

// Rule is the separator line used between console sections.
const Rule = "=========================================================="

// Title prints the program banner.
func Title(w io.Writer) {
	fmt.Fprintln(w, Rule)
	fmt.Fprintln(w, "   ADVANCED ROAD VEHICLE DYNAMICS & FUEL SIMULATION")
	fmt.Fprintln(w, Rule)
}

// Section prints a heading framed by rules.
func Section(w io.Writer, heading string) {
	fmt.Fprintln(w, Rule)
	fmt.Fprintln(w, heading)
	fmt.Fprintln(w, Rule)
}

// ScenarioMenu prints the numbered scenario choices.
func ScenarioMenu(w io.Writer) {
	fmt.Fprintln(w, Rule)
	fmt.Fprintln(w, "SELECT DRIVING SCENARIO:")
	for _, s := range vehicle.Scenarios {
		fmt.Fprintf(w, "%d. %s\n", int(s), s.Description())
	}
	fmt.Fprintln(w, Rule)
}

// Profile prints a vehicle's parameters.
func Profile(w io.Writer, p vehicle.Profile) {
	fmt.Fprintf(w, "Vehicle Mass: %.5f kg\n", p.Mass())
	fmt.Fprintf(w, "Dimensions: %.5fm x %.5fm x %.5fm\n", p.Width(), p.Height(), p.Length())
	fmt.Fprintf(w, "Frontal Area: %.5f m^2\n", p.FrontalArea())
	fmt.Fprintf(w, "Engine Efficiency: %.5f%%\n", p.Efficiency()*100)
}

// InputSummary prints the profile and trip that are about to be simulated.
func InputSummary(w io.Writer, p vehicle.Profile, t vehicle.Trip) {
	Section(w, "INPUT SUMMARY")
	Profile(w, p)
	fmt.Fprintf(w, "Travel Distance: %.5f km\n", t.DistanceKm)
	fmt.Fprintf(w, "Initial Speed: %.5f km/h\n", t.InitialSpeedKmh)
	fmt.Fprintf(w, "Scenario: %d\n", int(t.Scenario))
	fmt.Fprintln(w, Rule)
}

// Summary prints the run statistics block.
func Summary(w io.Writer, s stats.Summary) {
	Section(w, "SIMULATION STATISTICS")
	fmt.Fprintf(w, "Total Fuel Consumed: %.5f L\n", s.TotalFuel)
	fmt.Fprintf(w, "Fuel per 100km: %.5f L/100km\n", s.FuelPer100km)
	fmt.Fprintf(w, "Total Distance: %.5f km\n", units.MetersToKM(s.TotalDistance))
	fmt.Fprintf(w, "Average Speed: %.5f m/s (%.5f km/h)\n", s.AvgSpeed, units.MPSToKMPH(s.AvgSpeed))
	fmt.Fprintf(w, "Maximum Speed: %.5f m/s (%.5f km/h)\n", s.MaxSpeed, units.MPSToKMPH(s.MaxSpeed))
	fmt.Fprintf(w, "Average Drag Force: %.5f N\n", s.AvgDrag)
	fmt.Fprintf(w, "Maximum Drag Force: %.5f N\n", s.MaxDrag)
	fmt.Fprintf(w, "Maximum Altitude: %.5f m\n", s.MaxAltitude)
	fmt.Fprintf(w, "Minimum Altitude: %.5f m\n", s.MinAltitude)
	fmt.Fprintf(w, "Altitude Change: %.5f m\n", s.AltitudeChange())
	fmt.Fprintln(w, Rule)
}

// Comparison prints the headline figures of several runs side by side, in
// the order of labels.
func Comparison(w io.Writer, labels []string, summaries map[string]stats.Summary) {
	fmt.Fprintln(w, "Comparative Statistics:")
	for _, label := range labels {
		s, ok := summaries[label]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", label)
		fmt.Fprintf(w, "  Total Fuel: %.3f L\n", s.TotalFuel)
		fmt.Fprintf(w, "  Fuel per 100km: %.3f L/100km\n", s.FuelPer100km)
		fmt.Fprintf(w, "  Distance: %.3f km\n", units.MetersToKM(s.TotalDistance))
		fmt.Fprintf(w, "  Avg Speed: %.3f m/s\n", s.AvgSpeed)
	}
	fmt.Fprintln(w, Rule)
}
