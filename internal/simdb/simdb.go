// Package simdb persists simulation runs and their detections to SQLite.
package simdb

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/scan-sim/internal/monitoring"
	"github.com/banshee-data/scan-sim/internal/sim"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SimDB wraps the SQLite handle for one database file.
type SimDB struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema version.
func Open(path string) (*SimDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sdb := &SimDB{db}
	if err := sdb.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}

	monitoring.Logf("initialized simulation database at %s", path)
	return sdb, nil
}

// migrateUp runs all pending embedded migrations.
func (db *SimDB) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Note: m is not closed here because that would close the underlying DB
	// connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	return nil
}

// StartRun records a new run row and returns its generated run ID.
func (db *SimDB) StartRun(params sim.Params) (string, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode params: %w", err)
	}

	runID := uuid.NewString()
	_, err = db.Exec(
		`INSERT INTO sim_runs (run_id, started_unix_nanos, params_json) VALUES (?, ?, ?)`,
		runID, time.Now().UnixNano(), string(paramsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// InsertDetections writes one tick's detections inside a single transaction.
func (db *SimDB) InsertDetections(runID string, detections []sim.Detection) error {
	if len(detections) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO sim_detections (run_id, tick, x, y, z, range_m, reflectivity) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range detections {
		if _, err := stmt.Exec(runID, int64(d.Tick), d.X, d.Y, d.Z, d.Range, d.Reflectivity); err != nil {
			return fmt.Errorf("failed to insert detection: %w", err)
		}
	}

	return tx.Commit()
}

// CountDetections returns the number of persisted detections for a run.
func (db *SimDB) CountDetections(runID string) (int64, error) {
	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM sim_detections WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// Sink adapts a SimDB into a sim.DetectionSink for one run. Inserts happen
// on the caller's goroutine; failures are logged and never abort the tick.
type Sink struct {
	db    *SimDB
	runID string
}

// NewSink starts a run and returns its sink.
func NewSink(db *SimDB, params sim.Params) (*Sink, error) {
	runID, err := db.StartRun(params)
	if err != nil {
		return nil, err
	}
	return &Sink{db: db, runID: runID}, nil
}

// RunID returns the run this sink writes to.
func (s *Sink) RunID() string { return s.runID }

// Emit implements sim.DetectionSink.
func (s *Sink) Emit(tick uint64, detections []sim.Detection) {
	if err := s.db.InsertDetections(s.runID, detections); err != nil {
		monitoring.Logf("failed to persist %d detections for tick %d: %v", len(detections), tick, err)
	}
}
