package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/models"
)

// DayKeyLayout is the format of the keys of a WorkoutsByDay map
const DayKeyLayout = "2006-01-02"

// WindowDays is how many calendar days before today the list window reaches back
const WindowDays = 2

// WorkoutStore defines the workout persistence operations
type WorkoutStore interface {
	Insert(ctx context.Context, workout *models.Workout) (*models.Workout, error)
	FindByID(ctx context.Context, id string) (*models.Workout, error)
	FindByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*models.Workout, error)
	Update(ctx context.Context, workout *models.Workout) error
}

// WorkoutService implements the workout write path and the recent-window query
type WorkoutService struct {
	repo         WorkoutStore
	storeTimeout time.Duration
	location     *time.Location
	now          func() time.Time
	logger       *slog.Logger
}

// NewWorkoutService creates a new WorkoutService. Window boundaries and day keys
// are computed in loc; nil means server local time.
func NewWorkoutService(repo WorkoutStore, storeTimeout time.Duration, loc *time.Location, logger *slog.Logger) *WorkoutService {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	if loc == nil {
		loc = time.Local
	}
	return &WorkoutService{
		repo:         repo,
		storeTimeout: storeTimeout,
		location:     loc,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock replaces the time source, used by tests
func (s *WorkoutService) WithClock(now func() time.Time) *WorkoutService {
	s.now = now
	return s
}

// Window returns the inclusive range covering today and the two days before it
func (s *WorkoutService) Window() (time.Time, time.Time) {
	today := s.now().In(s.location)
	y, m, d := today.Date()

	start := time.Date(y, m, d-WindowDays, 0, 0, 0, 0, s.location)
	end := time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), s.location)
	return start, end
}

// DayKey returns the calendar day of t in the service location
func (s *WorkoutService) DayKey(t time.Time) string {
	return t.In(s.location).Format(DayKeyLayout)
}

// ListRecent returns the caller's workouts in the window grouped by day, each
// day ordered newest first
func (s *WorkoutService) ListRecent(ctx context.Context, identity models.Identity) (models.WorkoutsByDay, error) {
	if identity.UserID == "" {
		return nil, models.ErrUnauthenticated
	}

	start, end := s.Window()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rows, err := s.repo.FindByOwnerAndDateRange(ctx, identity.UserID, start, end)
	if err != nil {
		return nil, s.storeError("failed to list workouts", identity.UserID, err)
	}

	owned := make([]*models.Workout, 0, len(rows))
	for _, w := range rows {
		if w == nil {
			continue
		}
		if w.UserID != identity.UserID {
			s.logger.Warn("store returned a foreign workout",
				slog.String("workout_id", w.ID),
				slog.String("user_id", identity.UserID))
			continue
		}
		if w.Date.Before(start) || w.Date.After(end) {
			continue
		}
		owned = append(owned, w)
	}

	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Date.After(owned[j].Date)
	})

	grouped := make(models.WorkoutsByDay)
	for _, w := range owned {
		key := s.DayKey(w.Date)
		grouped[key] = append(grouped[key], w)
	}

	return grouped, nil
}

// Create stores a new workout owned by the caller
func (s *WorkoutService) Create(ctx context.Context, identity models.Identity, input models.WorkoutInput) (*models.Workout, error) {
	if identity.UserID == "" {
		return nil, models.ErrUnauthenticated
	}
	if input.Missing() {
		return nil, models.ErrMissingParameters
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	created, err := s.repo.Insert(ctx, &models.Workout{
		Title:  input.Title,
		Date:   input.Date,
		Type:   input.Type,
		UserID: identity.UserID,
	})
	if err != nil {
		return nil, s.storeError("failed to create workout", identity.UserID, err)
	}

	s.logger.Info("workout created",
		slog.String("workout_id", created.ID),
		slog.String("user_id", identity.UserID))
	return created, nil
}

// Update replaces the writable fields of a workout owned by the caller.
// A missing or foreign id is models.ErrNotFound.
func (s *WorkoutService) Update(ctx context.Context, identity models.Identity, id string, input models.WorkoutInput) error {
	if identity.UserID == "" {
		return models.ErrUnauthenticated
	}
	if id == "" || input.Missing() {
		return models.ErrMissingParameters
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.storeError("failed to load workout", identity.UserID, err)
	}
	if existing.UserID != identity.UserID {
		return models.ErrNotFound
	}

	updated := *existing
	updated.Title = input.Title
	updated.Date = input.Date
	updated.Type = input.Type

	if err := s.repo.Update(ctx, &updated); err != nil {
		return s.storeError("failed to update workout", identity.UserID, err)
	}

	s.logger.Info("workout updated",
		slog.String("workout_id", id),
		slog.String("user_id", identity.UserID))
	return nil
}

// storeError maps a store failure onto the error kinds handlers understand
func (s *WorkoutService) storeError(msg, userID string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.ErrNotFound
	case errors.Is(err, models.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn(msg, slog.String("user_id", userID), slog.Any("error", err))
		return fmt.Errorf("%w: %s", models.ErrTransient, msg)
	default:
		s.logger.Error(msg, slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
}
