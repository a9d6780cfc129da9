package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/vehicle.sim/internal/httputil"
	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/units"
)

const echartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

const defaultChartPoints = 2000

// lineChart builds one time-series line chart from records, sampling every
// stride-th record.
func lineChart(title, yName string, records []sim.StepRecord, stride int, series map[string]func(sim.StepRecord) float64, order ...string) *charts.Line {
	x := make([]string, 0, len(records)/stride+1)
	for i := 0; i < len(records); i += stride {
		x = append(x, strconv.FormatFloat(records[i].Time, 'f', -1, 64))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(x)
	for _, name := range order {
		field := series[name]
		data := make([]opts.LineData, 0, len(x))
		for i := 0; i < len(records); i += stride {
			data = append(data, opts.LineData{Value: field(records[i])})
		}
		line.AddSeries(name, data)
	}
	return line
}

// showChart renders an HTML page of a run's speed, forces, fuel and altitude.
// Query params:
//   - units (optional; defaults to the server units) for the speed axis
//   - max_points (optional; default 2000) to reduce payload size
func (s *Server) showChart(w http.ResponseWriter, r *http.Request, id string) {
	u, err := s.speedUnits(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	maxPoints := defaultChartPoints
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v >= 10 && v <= 50000 {
			maxPoints = v
		}
	}

	run, err := s.db.GetRun(r.Context(), id)
	if err != nil {
		lookupError(w, err)
		return
	}
	records, err := s.db.StepRecords(r.Context(), id)
	if err != nil {
		lookupError(w, err)
		return
	}
	if len(records) == 0 {
		httputil.NotFound(w, "run has no step records")
		return
	}

	// Downsample by stride to stay within maxPoints
	stride := 1
	if len(records) > maxPoints {
		stride = int(math.Ceil(float64(len(records)) / float64(maxPoints)))
	}

	speed := lineChart(
		fmt.Sprintf("%s: speed (%s scenario)", runTitle(run.Label, id), run.Trip.Scenario),
		"Speed ("+u+")", records, stride,
		map[string]func(sim.StepRecord) float64{
			"speed": func(rec sim.StepRecord) float64 { return units.ConvertSpeed(rec.Speed, u) },
		}, "speed")
	forces := lineChart("Resistance forces", "Force (N)", records, stride,
		map[string]func(sim.StepRecord) float64{
			"drag":    func(rec sim.StepRecord) float64 { return rec.Drag },
			"rolling": func(rec sim.StepRecord) float64 { return rec.RollingResistance },
			"slope":   func(rec sim.StepRecord) float64 { return rec.SlopeResistance },
			"total":   func(rec sim.StepRecord) float64 { return rec.TotalResistance },
		}, "drag", "rolling", "slope", "total")
	fuel := lineChart("Cumulative fuel", "Fuel (L)", records, stride,
		map[string]func(sim.StepRecord) float64{
			"cumulative_fuel": func(rec sim.StepRecord) float64 { return rec.CumulativeFuel },
		}, "cumulative_fuel")
	altitude := lineChart("Altitude", "Altitude (m)", records, stride,
		map[string]func(sim.StepRecord) float64{
			"altitude": func(rec sim.StepRecord) float64 { return rec.Altitude },
		}, "altitude")

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsHost)
	page.AddCharts(speed, forces, fuel, altitude)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func runTitle(label, id string) string {
	if label != "" {
		return label
	}
	return id
}
