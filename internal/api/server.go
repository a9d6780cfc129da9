// Package api serves simulation runs over HTTP: creating runs, reading back
// their records and summaries, charts, CSV downloads and a websocket stream
// that reports progress while a run executes.
package api

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/banshee-data/vehicle.sim/internal/config"
	"github.com/banshee-data/vehicle.sim/internal/db"
	"github.com/banshee-data/vehicle.sim/internal/httputil"
	"github.com/banshee-data/vehicle.sim/internal/monitoring"
	"github.com/banshee-data/vehicle.sim/internal/physics"
	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/timeutil"
	"github.com/banshee-data/vehicle.sim/internal/units"
	"github.com/banshee-data/vehicle.sim/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

var logf = monitoring.Prefixed("api")

type Server struct {
	db    *db.DB
	cfg   *config.SimConfig
	units string
	clock timeutil.Clock

	// pings counts keepalive pings answered by stream clients.
	pings atomic.Int64
}

// NewServer builds a Server backed by database. A nil cfg uses the built-in
// defaults; units is the default speed unit for record responses.
func NewServer(database *db.DB, cfg *config.SimConfig, speedUnits string) *Server {
	if cfg == nil {
		cfg = config.DefaultSimConfig()
	}
	if !units.IsValid(speedUnits) {
		speedUnits = units.MPS
	}
	return &Server{
		db:    database,
		cfg:   cfg,
		units: speedUnits,
		clock: timeutil.RealClock{},
	}
}

// SetClock replaces the clock used for run timing and stream keepalives.
func (s *Server) SetClock(c timeutil.Clock) {
	s.clock = c
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack lets websocket upgrades pass through the middleware.
func (lrw *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := lrw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/stream", s.streamRun)
	mux.HandleFunc("/api/runs/", s.handleRun)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRuns(w, r)
	case http.MethodPost:
		s.createRun(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleRun dispatches /api/runs/{id} and /api/runs/{id}/{view}.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/runs/"), "/")
	id := parts[0]
	if id == "" || len(parts) > 2 {
		httputil.NotFound(w, "unknown path")
		return
	}
	view := ""
	if len(parts) == 2 {
		view = parts[1]
	}

	if view == "" && r.Method == http.MethodDelete {
		s.deleteRun(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	switch view {
	case "":
		s.getRun(w, r, id)
	case "records":
		s.getRecords(w, r, id)
	case "analysis":
		s.getAnalysis(w, r, id)
	case "csv":
		s.downloadCSV(w, r, id)
	case "chart":
		s.showChart(w, r, id)
	default:
		httputil.NotFound(w, "unknown run view: "+view)
	}
}

// configResponse is the effective configuration after defaults.
type configResponse struct {
	Version          string                `json:"version"`
	Units            string                `json:"units"`
	ValidUnits       []string              `json:"valid_units"`
	TimeStep         float64               `json:"time_step"`
	ProgressInterval int                   `json:"progress_interval"`
	RunTimeout       string                `json:"run_timeout"`
	Constants        physics.Constants     `json:"constants"`
	Analysis         stats.AnalysisOptions `json:"analysis"`
	Limits           map[string][2]float64 `json:"limits"`
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, configResponse{
		Version:          version.String(),
		Units:            s.units,
		ValidUnits:       units.ValidUnits,
		TimeStep:         s.cfg.GetTimeStep(),
		ProgressInterval: s.cfg.GetProgressInterval(),
		RunTimeout:       s.cfg.GetRunTimeout().String(),
		Constants:        s.cfg.Constants(),
		Analysis:         s.cfg.AnalysisOptions(),
		Limits:           limits(),
	})
}
