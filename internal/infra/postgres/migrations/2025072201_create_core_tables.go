package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_core_tables.sql
var createCoreTablesSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createCoreTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS rewards;
				DROP TABLE IF EXISTS quiz_results;
				DROP TABLE IF EXISTS lesson_progress;
				DROP TABLE IF EXISTS quiz_questions;
				DROP TABLE IF EXISTS lessons;
				DROP TABLE IF EXISTS wallets;
				DROP TABLE IF EXISTS users;
			`)
			return err
		},
	)
}
