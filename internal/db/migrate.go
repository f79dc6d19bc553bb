package db

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/Carsk101/acutea/internal/db/migrations"
)

// Migrate накатывает миграции из embed FS.
func Migrate(ctx context.Context, database *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, ".")
}
