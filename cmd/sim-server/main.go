// Command sim-server serves the simulation API and the database admin
// routes. Run "sim-server migrate help" for schema management.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/vehicle.sim/internal/api"
	"github.com/banshee-data/vehicle.sim/internal/config"
	"github.com/banshee-data/vehicle.sim/internal/db"
	"github.com/banshee-data/vehicle.sim/internal/monitoring"
	"github.com/banshee-data/vehicle.sim/internal/units"
	"github.com/banshee-data/vehicle.sim/internal/version"
)

var (
	listen      = flag.String("listen", ":8080", "Listen address")
	dbFile      = flag.String("db", "simulation.db", "SQLite database file")
	configFile  = flag.String("config", "", "Path to a JSON simulation config (defaults are built in)")
	speedUnits  = flag.String("units", units.MPS, "Default speed units for API responses ("+units.GetValidUnitsString()+")")
	backupDir   = flag.String("backup-dir", os.TempDir(), "Directory where /debug/backup stages database copies")
	checkMigs   = flag.Bool("check-migrations", true, "Refuse to start when an existing database schema is not at the latest version")
	debugLog    = flag.Bool("debug", false, "Enable debug logging")
	versionFlag = flag.Bool("version", false, "Print version information and exit")
)

const shutdownTimeout = 5 * time.Second

func loadConfig(path string) (*config.SimConfig, error) {
	if path == "" {
		return config.DefaultSimConfig(), nil
	}
	return config.LoadSimConfig(path)
}

// newHandler mounts the API and admin routes and wraps them in request
// logging.
func newHandler(database *db.DB, cfg *config.SimConfig, speedUnits, backupDir string) (http.Handler, error) {
	mux := api.NewServer(database, cfg, speedUnits).ServeMux()
	if err := database.AttachAdminRoutes(mux, backupDir); err != nil {
		return nil, err
	}
	return api.LoggingMiddleware(mux), nil
}

// Main
func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("sim-server %s\n", version.String())
		return
	}

	if flag.NArg() > 0 && flag.Arg(0) == "migrate" {
		if err := db.RunMigrateCommand(flag.Args()[1:], *dbFile, os.Stdout); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}
	if flag.NArg() > 0 {
		log.Fatalf("unknown command %q", flag.Arg(0))
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if !units.IsValid(*speedUnits) {
		log.Fatalf("invalid units %q, expected one of: %s", *speedUnits, units.GetValidUnitsString())
	}
	monitoring.SetDebug(*debugLog)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.NewDBWithMigrationCheck(*dbFile, *checkMigs)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v\nRun 'sim-server -db %s migrate up' to update the schema.", err, *dbFile)
	}
	defer database.Close()

	handler, err := newHandler(database, cfg, *speedUnits, *backupDir)
	if err != nil {
		log.Fatalf("Failed to mount routes: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		server := &http.Server{
			Addr:    *listen,
			Handler: handler,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("sim-server %s listening on %s", version.Version, *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
