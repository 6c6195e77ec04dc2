package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BradenHooton/workout-tracker/migrations"
	"github.com/pressly/goose/v3"
)

// Goose dialects; each doubles as the migrations sub-directory name it reads
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

func dialectDir(dialect string) (gooseDialect string, dir string, err error) {
	switch dialect {
	case DialectPostgres:
		return "postgres", "postgres", nil
	case DialectSQLite:
		return "sqlite3", "sqlite", nil
	default:
		return "", "", fmt.Errorf("unsupported migration dialect %q", dialect)
	}
}

func runMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	gooseDialect, dir, err := dialectDir(dialect)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
