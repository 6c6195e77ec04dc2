package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/database"
	"github.com/BradenHooton/workout-tracker/internal/models"
	"github.com/google/uuid"
)

// sqliteTimeLayout is fixed width so that stored UTC timestamps compare
// correctly as text
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000"

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// SQLiteUserRepository stores users in a SQLite database
type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}
	return user, nil
}

func (r *SQLiteUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name,
		sqliteTime(user.Birthdate), sqliteTime(user.CreatedAt), sqliteTime(user.UpdatedAt),
	)
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}

	created := *user
	return &created, nil
}
