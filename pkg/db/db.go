package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/sirupsen/logrus"

	_ "github.com/golang-migrate/migrate/v4/source/file" // needed
	_ "github.com/lib/pq"                                // needed
)

var (
	instance   *sql.DB
	instanceMu sync.Mutex
)

// Open connects to postgres and verifies the connection
func Open(dsn string) (*sql.DB, error) {
	dbh, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open postgres: %w", err)
	}

	if err := dbh.Ping(); err != nil {
		_ = dbh.Close()
		return nil, fmt.Errorf("could not reach postgres: %w", err)
	}

	return dbh, nil
}

// Instance returns the shared database instance, connecting on first use
func Instance(dsn string) *sql.DB {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		return instance
	}

	dbh, err := Open(dsn)
	if err != nil {
		panic(err)
	}

	instance = dbh

	return instance
}

// Migrate brings the rooms, sessions and actions tables up to date
func Migrate(dbh *sql.DB, migrationsPath string) error {
	log := logrus.WithField("migrationsPath", migrationsPath)
	driver, err := postgres.WithInstance(dbh, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug("schema is up to date")
		return nil
	} else if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, _, _ := m.Version()
	log.WithField("version", version).Info("migrated schema")
	return nil
}

// Scanner is satisfied by both *sql.Row and *sql.Rows
type Scanner interface {
	Scan(...interface{}) error
}
