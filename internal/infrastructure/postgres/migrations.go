package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

// Direction selects which way RunMigrations moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// RunMigrations applies the file migrations in dir. Having nothing to do is
// not an error.
func RunMigrations(dsn, dir string, direction Direction, logger logrus.FieldLogger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return oops.Code("MIGRATE_OPEN").Wrap(err)
	}
	defer func() { _ = db.Close() }()

	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return oops.Code("MIGRATE_DRIVER").Wrap(err)
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		return oops.Code("MIGRATE_SOURCE").With("dir", dir).Wrap(err)
	}

	logger.WithField("direction", string(direction)).Info("running migrations...")
	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Steps(-1)
	default:
		return oops.Code("MIGRATE_DIRECTION").Errorf("unknown migration direction %q", direction)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	if err != nil {
		return oops.Code("MIGRATE_RUN").With("direction", string(direction)).Wrap(err)
	}
	return nil
}
