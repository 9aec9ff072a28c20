package migration

import (
	"github.com/go-pg/migrations/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	cs "github.com/webtor-io/common-services"
)

const sqlDir = "migrations"

// PGMigration applies the SQL files found in the migrations directory
// together with the Go migrations registered on col.
type PGMigration struct {
	pg  *cs.PG
	col *migrations.Collection
}

func NewPGMigration(pg *cs.PG, col *migrations.Collection) *PGMigration {
	return &PGMigration{
		pg:  pg,
		col: col,
	}
}

// Run executes a go-pg migrations command (up, down, reset, version).
// It is a no-op when the database is not configured.
func (s *PGMigration) Run(a ...string) error {
	db := s.pg.Get()
	if db == nil {
		log.Info("db not configured, board keeps messages in memory, skipping migration")
		return nil
	}
	if err := s.col.DiscoverSQLMigrations(sqlDir); err != nil {
		return errors.Wrap(err, "failed to discover sql migrations")
	}
	if _, _, err := s.col.Run(db, "init"); err != nil {
		return errors.Wrap(err, "failed to init migrations table")
	}
	oldVersion, newVersion, err := s.col.Run(db, a...)
	if err != nil {
		return errors.Wrapf(err, "failed to migrate from %v to %v", oldVersion, newVersion)
	}
	l := log.WithFields(log.Fields{
		"old_version": oldVersion,
		"new_version": newVersion,
	})
	if newVersion != oldVersion {
		l.Info("db migrated")
	} else {
		l.Info("db is up to date")
	}
	return nil
}
