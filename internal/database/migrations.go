package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// Migrator applies the versioned schema migrations for the triage
// service (the triage_history table and the condition catalog) from a
// file source against Postgres.
type Migrator struct {
	migrate *migrate.Migrate
	log     *logrus.Logger
}

// NewMigrator opens the migration source at migrationsPath against the
// given database URL.
func NewMigrator(databaseURL, migrationsPath string, logger *logrus.Logger) (*Migrator, error) {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening migration source: %w", err)
	}

	return &Migrator{migrate: m, log: logger}, nil
}

// Up applies every pending migration. An already-current schema is not
// an error.
func (m *Migrator) Up() error {
	m.log.Info("Applying triage schema migrations")

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info("Triage schema already up to date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}

	m.logVersion("Triage schema migrated")
	return nil
}

// Down reverts the most recent migration.
func (m *Migrator) Down() error {
	m.log.Info("Reverting last triage schema migration")

	if err := m.migrate.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info("No triage schema migration to revert")
			return nil
		}
		return fmt.Errorf("reverting migration: %w", err)
	}

	m.logVersion("Triage schema migration reverted")
	return nil
}

// Version returns the current schema version and dirty flag.
func (m *Migrator) Version() (uint, bool, error) {
	return m.migrate.Version()
}

// Close releases the migration source and database handles.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("closing migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("closing migration database: %w", dbErr)
	}
	return nil
}

func (m *Migrator) logVersion(msg string) {
	version, dirty, err := m.migrate.Version()
	if err != nil {
		m.log.WithError(err).Warn("Could not read schema version")
		return
	}
	m.log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info(msg)
}
