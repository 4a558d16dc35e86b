package main

import (
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"holdem-server/internal/config"
	"holdem-server/pkg/db"
)

func main() {
	cfg := config.Instance()
	if err := db.Migrate(waitForDB(cfg.PGDSN), cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}
}

func waitForDB(dsn string) *sql.DB {
	timeout := time.NewTimer(time.Second * 10)
	for {
		select {
		case <-timeout.C:
			logrus.Fatal("could not connect to database")
		default:
			dbh, err := db.Open(dsn)
			if err == nil {
				return dbh
			}

			logrus.WithError(err).Debug("database is not ready")
			time.Sleep(time.Millisecond * 500)
		}
	}
}
