package services

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/auth"
	"github.com/BradenHooton/workout-tracker/internal/models"
	pkglogger "github.com/BradenHooton/workout-tracker/pkg/logger"
)

// MockUserStore implements UserStore for testing
type MockUserStore struct {
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	CreateFunc     func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

// MockWorkoutStore implements WorkoutStore for testing
type MockWorkoutStore struct {
	InsertFunc                  func(ctx context.Context, workout *models.Workout) (*models.Workout, error)
	FindByIDFunc                func(ctx context.Context, id string) (*models.Workout, error)
	FindByOwnerAndDateRangeFunc func(ctx context.Context, ownerID string, start, end time.Time) ([]*models.Workout, error)
	UpdateFunc                  func(ctx context.Context, workout *models.Workout) error

	InsertCalls int
	UpdateCalls int
}

func (m *MockWorkoutStore) Insert(ctx context.Context, workout *models.Workout) (*models.Workout, error) {
	m.InsertCalls++
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, workout)
	}
	return workout, nil
}

func (m *MockWorkoutStore) FindByID(ctx context.Context, id string) (*models.Workout, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockWorkoutStore) FindByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*models.Workout, error) {
	if m.FindByOwnerAndDateRangeFunc != nil {
		return m.FindByOwnerAndDateRangeFunc(ctx, ownerID, start, end)
	}
	return nil, nil
}

func (m *MockWorkoutStore) Update(ctx context.Context, workout *models.Workout) error {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, workout)
	}
	return nil
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	IssueTokenFunc func(identity models.Identity) (string, error)
}

func (m *MockTokenIssuer) IssueToken(identity models.Identity) (string, error) {
	if m.IssueTokenFunc != nil {
		return m.IssueTokenFunc(identity)
	}
	return "token-for-" + identity.UserID, nil
}

// recordingSink collects dispatched alerts
type recordingSink struct {
	mu     sync.Mutex
	alerts []*auth.BruteForceAlert
}

func (r *recordingSink) Dispatch(alert *auth.BruteForceAlert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
}

func (r *recordingSink) Alerts() []*auth.BruteForceAlert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*auth.BruteForceAlert(nil), r.alerts...)
}

// MockNotifier implements AlertNotifier for testing
type MockNotifier struct {
	mu         sync.Mutex
	NotifyFunc func(ctx context.Context, subject, body string) error
	Subjects   []string
	Bodies     []string
}

func (m *MockNotifier) Notify(ctx context.Context, subject, body string) error {
	m.mu.Lock()
	m.Subjects = append(m.Subjects, subject)
	m.Bodies = append(m.Bodies, body)
	fn := m.NotifyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, subject, body)
	}
	return nil
}

// syncBuffer is a goroutine-safe log sink
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLoggers() (*slog.Logger, *pkglogger.AuditLogger, *syncBuffer) {
	buf := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, pkglogger.NewAuditLogger(logger), buf
}

// NewTestUser creates a user with the given password hash
func NewTestUser(id, email string, hash string) *models.User {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Birthdate:    time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}
