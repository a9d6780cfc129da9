package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/banshee-data/vehicle.sim/internal/db"
	"github.com/banshee-data/vehicle.sim/internal/httputil"
	"github.com/banshee-data/vehicle.sim/internal/report"
	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/units"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

// RunRequest describes a simulation to execute and store.
type RunRequest struct {
	Label   string                `json:"label"`
	Vehicle vehicle.ProfileParams `json:"vehicle"`
	Trip    vehicle.Trip          `json:"trip"`
}

// Validate applies the same operating envelope as the interactive CLI.
func (req RunRequest) Validate() error {
	return vehicle.CheckRanges(vehicle.FromParams(req.Vehicle), req.Trip)
}

// RecordsResponse is the body of GET /api/runs/{id}/records.
type RecordsResponse struct {
	RunID   string           `json:"run_id"`
	Units   string           `json:"units"`
	Records []sim.StepRecord `json:"records"`
}

func limits() map[string][2]float64 {
	out := map[string][2]float64{}
	for name, r := range map[string]vehicle.Range{
		vehicle.FieldMass:       vehicle.MassRange,
		vehicle.FieldWidth:      vehicle.WidthRange,
		vehicle.FieldHeight:     vehicle.HeightRange,
		vehicle.FieldLength:     vehicle.LengthRange,
		vehicle.FieldEfficiency: vehicle.EfficiencyRange,
		vehicle.FieldDistance:   vehicle.DistanceRange,
		vehicle.FieldSpeed:      vehicle.SpeedRange,
	} {
		out[name] = [2]float64{r.Min, r.Max}
	}
	return out
}

// execute runs req under the configured timeout and stores the result.
func (s *Server) execute(ctx context.Context, req RunRequest, obs sim.ProgressObserver) (*db.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GetRunTimeout())
	defer cancel()

	profile := vehicle.FromParams(req.Vehicle)
	opts := s.cfg.EngineOptions()
	if obs != nil {
		opts = append(opts, sim.WithObserver(obs))
	}
	engine, err := sim.New(profile, req.Trip, opts...)
	if err != nil {
		return nil, err
	}

	start := s.clock.Now()
	res, err := engine.Run(ctx)
	if err != nil {
		return nil, err
	}
	run, err := s.db.InsertRun(ctx, req.Label, profile, req.Trip, res)
	if err != nil {
		return nil, fmt.Errorf("store run: %w", err)
	}
	logf("run %s: %s scenario, %d steps in %v", run.ID, req.Trip.Scenario, res.Steps, s.clock.Since(start))
	return run, nil
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	run, err := s.execute(r.Context(), req, nil)
	switch {
	case errors.Is(err, vehicle.ErrInvalidInput):
		httputil.BadRequest(w, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "simulation timed out")
		return
	case err != nil:
		httputil.InternalServerError(w, fmt.Sprintf("Failed to run simulation: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, run)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.db.ListRuns(r.Context(), limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to list runs: %v", err))
		return
	}
	httputil.WriteJSONOK(w, runs)
}

// lookupError writes the response for a failed run lookup.
func lookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	httputil.InternalServerError(w, err.Error())
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request, id string) {
	run, err := s.db.GetRun(r.Context(), id)
	if err != nil {
		lookupError(w, err)
		return
	}
	httputil.WriteJSONOK(w, run)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.db.DeleteRun(r.Context(), id); err != nil {
		lookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// speedUnits returns the ?units= override or the server default.
func (s *Server) speedUnits(r *http.Request) (string, error) {
	u := r.URL.Query().Get("units")
	if u == "" {
		return s.units, nil
	}
	if !units.IsValid(u) {
		return "", fmt.Errorf("invalid units %q, expected one of: %s", u, units.GetValidUnitsString())
	}
	return u, nil
}

func (s *Server) getRecords(w http.ResponseWriter, r *http.Request, id string) {
	u, err := s.speedUnits(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	records, err := s.db.StepRecords(r.Context(), id)
	if err != nil {
		lookupError(w, err)
		return
	}
	for i := range records {
		records[i].Speed = units.ConvertSpeed(records[i].Speed, u)
	}
	httputil.WriteJSONOK(w, RecordsResponse{RunID: id, Units: u, Records: records})
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	records, err := s.db.StepRecords(r.Context(), id)
	if err != nil {
		lookupError(w, err)
		return
	}
	a, err := stats.Analyze(records, s.cfg.AnalysisOptions())
	if errors.Is(err, stats.ErrDegenerateRun) {
		httputil.WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	} else if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, a)
}

func (s *Server) downloadCSV(w http.ResponseWriter, r *http.Request, id string) {
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
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.CSVFileName(run.Trip.Scenario)))
	if err := report.WriteCSV(w, records); err != nil {
		logf("failed to write csv for run %s: %v", id, err)
	}
}
