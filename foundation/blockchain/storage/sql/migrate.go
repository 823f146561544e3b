package sql

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies every pending schema migration to the database named by
// the URL. It reports the resulting schema version.
func Migrate(dbURL string) (uint, error) {
	engine, driver, dsn, err := parse(dbURL)
	if err != nil {
		return 0, err
	}

	m, err := newMigrate(engine, driver, dsn)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if err := up(m); err != nil {
		return 0, err
	}

	v, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("version: %w", err)
	}

	if dirty {
		return v, fmt.Errorf("schema version %d is dirty", v)
	}

	return v, nil
}

// migrateUp runs the migrations over a dedicated handle. Closing the migrate
// instance closes that handle.
func migrateUp(engine string, driver string, dsn string) error {
	m, err := newMigrate(engine, driver, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	return up(m)
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("up: %w", err)
	}

	return nil
}

func newMigrate(engine string, driver string, dsn string) (*migrate.Migrate, error) {
	db, err := open(engine, driver, dsn)
	if err != nil {
		return nil, err
	}

	var instance migratedb.Driver
	switch engine {
	case SchemePostgres:
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		instance, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate driver: %w", err)
	}

	source, err := iofs.New(migrations, "migrations/"+engine)
	if err != nil {
		instance.Close()
		return nil, fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, engine, instance)
	if err != nil {
		instance.Close()
		return nil, fmt.Errorf("migrate init: %w", err)
	}

	return m, nil
}
