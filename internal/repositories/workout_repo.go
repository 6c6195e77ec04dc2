package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/database"
	"github.com/BradenHooton/workout-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workoutColumns = `id, title, date, type, user_id, created_at, updated_at`

// WorkoutRepository stores workouts in PostgreSQL
type WorkoutRepository struct {
	pool *pgxpool.Pool
}

func NewWorkoutRepository(db *database.DB) *WorkoutRepository {
	return &WorkoutRepository{pool: db.Pool}
}

func scanWorkout(scanner rowScanner) (*models.Workout, error) {
	var w models.Workout
	err := scanner.Scan(&w.ID, &w.Title, &w.Date, &w.Type, &w.UserID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkoutRepository) Insert(ctx context.Context, workout *models.Workout) (*models.Workout, error) {
	workout.ID = uuid.New().String()

	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	query := `
		INSERT INTO workouts (` + workoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + workoutColumns

	created, err := scanWorkout(r.pool.QueryRow(ctx, query,
		workout.ID, workout.Title, workout.Date, workout.Type, workout.UserID,
		workout.CreatedAt, workout.UpdatedAt,
	))
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return created, nil
}

func (r *WorkoutRepository) FindByID(ctx context.Context, id string) (*models.Workout, error) {
	if _, err := uuid.Parse(id); err != nil {
		// not a uuid, so it cannot name a row
		return nil, models.ErrNotFound
	}

	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE id = $1`

	w, err := scanWorkout(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return w, nil
}

// FindByOwnerAndDateRange returns the owner's workouts with start <= date <= end,
// newest first
func (r *WorkoutRepository) FindByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*models.Workout, error) {
	query := `
		SELECT ` + workoutColumns + `
		FROM workouts
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return scanWorkoutRows(rows)
}

func scanWorkoutRows(rows pgx.Rows) ([]*models.Workout, error) {
	defer rows.Close()

	workouts := make([]*models.Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", database.MapPostgresError(err))
		}
		workouts = append(workouts, w)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return workouts, nil
}

// Update writes title, date and type. The row must belong to workout.UserID;
// otherwise nothing changes and models.ErrNotFound is returned.
func (r *WorkoutRepository) Update(ctx context.Context, workout *models.Workout) error {
	workout.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE workouts SET title = $1, date = $2, type = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		workout.Title, workout.Date, workout.Type, workout.UpdatedAt,
		workout.ID, workout.UserID,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
