package db

import (
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/Spok95/siakad/internal/db/migrations"
)

func setupGoose() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("postgres")
}

// Migrate applies all embedded migrations.
func Migrate(database *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	return goose.Up(database, ".")
}

// MigrateDown rolls back the latest migration.
func MigrateDown(database *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	return goose.Down(database, ".")
}

func MigrateStatus(database *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	return goose.Status(database, ".")
}
