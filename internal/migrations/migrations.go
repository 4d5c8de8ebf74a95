// Package migrations owns the benchmark_runs table.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var Files embed.FS

// Status is the schema version recorded in the database.
type Status struct {
	Version uint
	Dirty   bool
	// Fresh is set when no migration was ever applied.
	Fresh bool
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(Files, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	drv, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, "postgres", drv)
}

func status(m *migrate.Migrate) (Status, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{Fresh: true}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("read migration version: %w", err)
	}
	return Status{Version: v, Dirty: dirty}, nil
}

// Apply brings the database up to the latest version. A dirty version left
// by an interrupted run is forced clean first; the migrations only use
// IF [NOT] EXISTS so rerunning them is harmless. With apply false the
// database is only inspected.
func Apply(db *sql.DB, apply bool) (Status, error) {
	m, err := newMigrator(db)
	if err != nil {
		return Status{}, err
	}

	before, err := status(m)
	if err != nil {
		return Status{}, err
	}
	if before.Dirty {
		slog.Warn("[Migrations] Forcing dirty version", "version", before.Version)
		if err := m.Force(int(before.Version)); err != nil {
			return before, fmt.Errorf("force version %d: %w", before.Version, err)
		}
		before.Dirty = false
	}
	if !apply {
		slog.Info("[Migrations] Auto-migration disabled", "version", before.Version, "fresh", before.Fresh)
		return before, nil
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("[Migrations] Up to date", "version", before.Version)
		return before, nil
	case err != nil:
		return before, fmt.Errorf("migrate up: %w", err)
	}

	after, err := status(m)
	if err != nil {
		return Status{}, err
	}
	slog.Info("[Migrations] Applied", "from", before.Version, "to", after.Version)
	return after, nil
}
