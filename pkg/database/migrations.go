package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations
type Migrator struct {
	path   string
	logger *zap.Logger
}

// NewMigrator creates a migrator for the database file at path
func NewMigrator(path string, logger *zap.Logger) *Migrator {
	return &Migrator{path: path, logger: logger}
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.run(func(mg *migrate.Migrate) error {
		return mg.Up()
	})
}

// Down rolls back the given number of migrations
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	return m.run(func(mg *migrate.Migrate) error {
		return mg.Steps(-steps)
	})
}

// Version reports the current schema version. A fresh database returns 0.
func (m *Migrator) Version() (uint, bool, error) {
	var version uint
	var dirty bool
	err := m.run(func(mg *migrate.Migrate) error {
		v, d, err := mg.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		version, dirty = v, d
		return err
	})
	return version, dirty, err
}

// run opens a dedicated connection so closing the migrate instance does not
// close the application's pool
func (m *Migrator) run(fn func(*migrate.Migrate) error) error {
	conn, err := sql.Open("sqlite3", DSN(m.path))
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer conn.Close()

	driver, err := sqlite3.WithInstance(conn, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite3 driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer mg.Close()

	if err := fn(mg); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("Database schema is up to date", zap.String("path", m.path))
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	m.logger.Info("Database migrations applied", zap.String("path", m.path))
	return nil
}
