// Package db persists simulation runs and their step records in SQLite.
// The schema is owned by golang-migrate; the migrations are embedded in the
// binary.
package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/vehicle.sim/internal/monitoring"
	"github.com/banshee-data/vehicle.sim/internal/timeutil"
)

type DB struct {
	*sql.DB
	path  string
	clock timeutil.Clock
}

var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

var logf = monitoring.Prefixed("db")

// dsn appends the connection pragmas to path so every pooled connection
// gets them.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// OpenDB opens the database without touching the schema.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &DB{DB: sqlDB, path: path, clock: timeutil.RealClock{}}, nil
}

// NewDB opens the database and applies every pending migration.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(MigrationsFS()); err != nil {
		db.Close()
		return nil, err
	}
	version, _, err := db.MigrateVersion(MigrationsFS())
	if err != nil {
		db.Close()
		return nil, err
	}
	logf("%s ready at schema version %d", path, version)
	return db, nil
}

// NewDBWithMigrationCheck opens the database without migrating it. A fresh
// file gets every migration applied. When checkEnabled is set, an existing
// schema that is dirty or not at the latest version is an error and the
// caller is expected to run the migrate command.
func NewDBWithMigrationCheck(path string, checkEnabled bool) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	migrations := MigrationsFS()
	version, dirty, err := db.MigrateVersion(migrations)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version == 0 && !dirty {
		if err := db.MigrateUp(migrations); err != nil {
			db.Close()
			return nil, err
		}
		logf("%s initialised with the latest schema", path)
		return db, nil
	}
	if checkEnabled {
		if err := db.CheckMigrations(migrations); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w (run the migrate command)", path, err)
		}
	}
	logf("%s opened at schema version %d", path, version)
	return db, nil
}

// SetClock replaces the clock used to stamp new runs.
func (db *DB) SetClock(c timeutil.Clock) {
	db.clock = c
}

// Path is the file the database was opened from.
func (db *DB) Path() string { return db.path }
