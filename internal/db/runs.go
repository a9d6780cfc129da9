package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// DefaultListLimit bounds ListRuns when no limit is given.
const DefaultListLimit = 100

// Run is a stored simulation run without its step records.
type Run struct {
	ID        string                `json:"id"`
	Label     string                `json:"label"`
	CreatedAt time.Time             `json:"created_at"`
	Profile   vehicle.ProfileParams `json:"profile"`
	Trip      vehicle.Trip          `json:"trip"`
	Steps     int                   `json:"steps"`
	TimeStep  float64               `json:"time_step"`
	TotalTime float64               `json:"total_time"`
	// Summary is nil for degenerate runs.
	Summary *stats.Summary `json:"summary,omitempty"`
}

const runColumns = `run_id, label, created_unix_ns, mass_kg, width_m, height_m, length_m, efficiency,
	distance_km, initial_speed_kmh, scenario, steps, time_step, total_time,
	total_fuel, total_distance, fuel_per_100km, avg_speed, max_speed,
	avg_drag, max_drag, max_altitude, min_altitude`

// InsertRun stores a finished run and all of its step records in one
// transaction and returns the stored Run.
func (db *DB) InsertRun(ctx context.Context, label string, profile vehicle.Profile, trip vehicle.Trip, res *sim.Result) (*Run, error) {
	if res == nil {
		return nil, errors.New("nil result")
	}
	run := &Run{
		ID:        uuid.NewString(),
		Label:     label,
		CreatedAt: db.clock.Now().UTC(),
		Profile:   profile.Params(),
		Trip:      trip,
		Steps:     res.Steps,
		TimeStep:  res.TimeStep,
		TotalTime: res.TotalTime,
	}
	if s, err := stats.Summarize(res.Records); err == nil {
		run.Summary = &s
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var sum [9]sql.NullFloat64
	if s := run.Summary; s != nil {
		for i, v := range []float64{s.TotalFuel, s.TotalDistance, s.FuelPer100km, s.AvgSpeed,
			s.MaxSpeed, s.AvgDrag, s.MaxDrag, s.MaxAltitude, s.MinAltitude} {
			sum[i] = sql.NullFloat64{Float64: v, Valid: true}
		}
	}
	p := run.Profile
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sim_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, run.CreatedAt.UnixNano(), p.Mass, p.Width, p.Height, p.Length, p.Efficiency,
		trip.DistanceKm, trip.InitialSpeedKmh, int(trip.Scenario), run.Steps, run.TimeStep, run.TotalTime,
		sum[0], sum[1], sum[2], sum[3], sum[4], sum[5], sum[6], sum[7], sum[8],
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sim_steps (run_id, step, `+strings.Join(sim.Columns, ", ")+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare step insert: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, 2+len(sim.Columns))
	args[0] = run.ID
	for i, r := range res.Records {
		args[1] = i
		for j, v := range r.Values() {
			args[2+j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, fmt.Errorf("insert step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r        Run
		created  int64
		scenario int
		sum      [9]sql.NullFloat64
	)
	err := row.Scan(&r.ID, &r.Label, &created,
		&r.Profile.Mass, &r.Profile.Width, &r.Profile.Height, &r.Profile.Length, &r.Profile.Efficiency,
		&r.Trip.DistanceKm, &r.Trip.InitialSpeedKmh, &scenario, &r.Steps, &r.TimeStep, &r.TotalTime,
		&sum[0], &sum[1], &sum[2], &sum[3], &sum[4], &sum[5], &sum[6], &sum[7], &sum[8])
	if err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	r.Trip.Scenario = vehicle.Scenario(scenario)
	if sum[0].Valid {
		r.Summary = &stats.Summary{
			Records:       r.Steps,
			TotalFuel:     sum[0].Float64,
			TotalDistance: sum[1].Float64,
			FuelPer100km:  sum[2].Float64,
			AvgSpeed:      sum[3].Float64,
			MaxSpeed:      sum[4].Float64,
			AvgDrag:       sum[5].Float64,
			MaxDrag:       sum[6].Float64,
			MaxAltitude:   sum[7].Float64,
			MinAltitude:   sum[8].Float64,
		}
	}
	return &r, nil
}

// GetRun returns the run with the given id or ErrRunNotFound.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM sim_runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// uses DefaultListLimit.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM sim_runs ORDER BY created_unix_ns DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// StepRecords returns a run's records in step order. A run with no steps
// returns an empty slice; an unknown id returns ErrRunNotFound.
func (db *DB) StepRecords(ctx context.Context, id string) ([]sim.StepRecord, error) {
	if _, err := db.GetRun(ctx, id); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+strings.Join(sim.Columns, ", ")+` FROM sim_steps WHERE run_id = ? ORDER BY step`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []sim.StepRecord{}
	vals := make([]float64, len(sim.Columns))
	ptrs := make([]interface{}, len(vals))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec, _ := sim.RecordFromValues(vals)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its records.
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sim_steps WHERE run_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sim_runs WHERE run_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return tx.Commit()
}
