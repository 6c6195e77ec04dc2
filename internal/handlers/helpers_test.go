package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/workout-tracker/internal/auth"
	"github.com/BradenHooton/workout-tracker/internal/models"
	"github.com/BradenHooton/workout-tracker/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds a caller identity to the request context
func WithAuthContext(req *http.Request, userID, email string) *http.Request {
	ctx := auth.WithIdentity(req.Context(), &models.Identity{UserID: userID, Email: email})
	return req.WithContext(ctx)
}

// WithURLParam sets a chi route parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks status and content type, then decodes the body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	if target != nil {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks status and the exact error message
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.JSONEq(t, `{"message":"`+expectedMessage+`"}`, w.Body.String())
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc func(ctx context.Context, email, password string, meta services.LoginRequestMeta) (*services.AuthResponse, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, meta services.LoginRequestMeta) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, meta)
	}
	return nil, models.ErrInvalidCredentials
}

// MockWorkoutService implements WorkoutServiceInterface for testing
type MockWorkoutService struct {
	ListRecentFunc func(ctx context.Context, identity models.Identity) (models.WorkoutsByDay, error)
	CreateFunc     func(ctx context.Context, identity models.Identity, input models.WorkoutInput) (*models.Workout, error)
	UpdateFunc     func(ctx context.Context, identity models.Identity, id string, input models.WorkoutInput) error

	Calls int
}

func (m *MockWorkoutService) ListRecent(ctx context.Context, identity models.Identity) (models.WorkoutsByDay, error) {
	m.Calls++
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, identity)
	}
	return models.WorkoutsByDay{}, nil
}

func (m *MockWorkoutService) Create(ctx context.Context, identity models.Identity, input models.WorkoutInput) (*models.Workout, error) {
	m.Calls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, identity, input)
	}
	return &models.Workout{ID: "w-1", Title: input.Title, Date: input.Date, Type: input.Type, UserID: identity.UserID}, nil
}

func (m *MockWorkoutService) Update(ctx context.Context, identity models.Identity, id string, input models.WorkoutInput) error {
	m.Calls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, identity, id, input)
	}
	return nil
}
