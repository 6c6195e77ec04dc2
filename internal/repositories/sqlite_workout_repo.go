package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/database"
	"github.com/BradenHooton/workout-tracker/internal/models"
	"github.com/google/uuid"
)

// SQLiteWorkoutRepository stores workouts in a SQLite database. All timestamps
// are written in UTC.
type SQLiteWorkoutRepository struct {
	db *sql.DB
}

func NewSQLiteWorkoutRepository(db *sql.DB) *SQLiteWorkoutRepository {
	return &SQLiteWorkoutRepository{db: db}
}

func (r *SQLiteWorkoutRepository) Insert(ctx context.Context, workout *models.Workout) (*models.Workout, error) {
	workout.ID = uuid.New().String()

	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	query := `INSERT INTO workouts (` + workoutColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		workout.ID, workout.Title, sqliteTime(workout.Date), workout.Type, workout.UserID,
		sqliteTime(workout.CreatedAt), sqliteTime(workout.UpdatedAt),
	)
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}

	created := *workout
	return &created, nil
}

func (r *SQLiteWorkoutRepository) FindByID(ctx context.Context, id string) (*models.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE id = ?`

	w, err := scanWorkout(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}
	return w, nil
}

func (r *SQLiteWorkoutRepository) FindByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*models.Workout, error) {
	query := `
		SELECT ` + workoutColumns + `
		FROM workouts
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, sqliteTime(start), sqliteTime(end))
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}
	defer rows.Close()

	workouts := make([]*models.Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", database.MapSQLiteError(err))
		}
		workouts = append(workouts, w)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapSQLiteError(err)
	}
	return workouts, nil
}

func (r *SQLiteWorkoutRepository) Update(ctx context.Context, workout *models.Workout) error {
	workout.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE workouts SET title = ?, date = ?, type = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		workout.Title, sqliteTime(workout.Date), workout.Type, sqliteTime(workout.UpdatedAt),
		workout.ID, workout.UserID,
	)
	if err != nil {
		return database.MapSQLiteError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return database.MapSQLiteError(err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}
