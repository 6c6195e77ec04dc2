package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/config"
	"github.com/BradenHooton/workout-tracker/internal/models"
	"github.com/mattn/go-sqlite3"
)

// SQLiteDB is the single-file store used for local and small deployments
type SQLiteDB struct {
	*sql.DB
	logger *slog.Logger
}

// NewSQLite opens (creating if needed) the database file at path
func NewSQLite(path string, logger *slog.Logger) (*SQLiteDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite serialises writers; a single connection also keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		slog.String("driver", config.DriverSQLite),
		slog.String("path", path),
	)

	return &SQLiteDB{DB: db, logger: logger}, nil
}

// Migrate applies the embedded sqlite migrations
func (db *SQLiteDB) Migrate(ctx context.Context) error {
	return runMigrations(ctx, db.DB, DialectSQLite)
}

func (db *SQLiteDB) Close() {
	db.logger.Info("closing sqlite database")
	if err := db.DB.Close(); err != nil {
		db.logger.Error("failed to close sqlite database", slog.Any("error", err))
	}
}

func (db *SQLiteDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// MapSQLiteError translates driver errors into model sentinel errors
func MapSQLiteError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}

	if isContextTimeout(err) {
		return fmt.Errorf("%w: %w", models.ErrTransient, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%w: %w", models.ErrTransient, err)
		case sqlite3.ErrConstraint:
			if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
				return models.ErrConflict
			}
		}
	}

	return err
}
