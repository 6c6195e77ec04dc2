package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkoutHandler(svc *MockWorkoutService) *WorkoutHandler {
	return NewWorkoutHandler(svc, time.UTC, discardLogger())
}

func TestWorkoutHandler_Create(t *testing.T) {
	var gotInput models.WorkoutInput
	var gotIdentity models.Identity
	svc := &MockWorkoutService{
		CreateFunc: func(ctx context.Context, identity models.Identity, input models.WorkoutInput) (*models.Workout, error) {
			gotIdentity, gotInput = identity, input
			return &models.Workout{
				ID: "w-1", Title: input.Title, Date: input.Date, Type: input.Type, UserID: identity.UserID,
				CreatedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	h := newWorkoutHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/api/workouts", WorkoutRequest{Title: "Legs", Date: "2026-03-15T08:00:00Z", Type: "strength"})
	req = WithAuthContext(req, "u-1", "user@example.com")
	w := httptest.NewRecorder()
	h.Create(w, req)

	var resp struct {
		Success bool            `json:"success"`
		Result  WorkoutResponse `json:"result"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "w-1", resp.Result.ID)
	assert.Equal(t, "u-1", resp.Result.UserID)
	assert.Equal(t, "2026-03-15T08:00:00Z", resp.Result.Date)
	assert.Equal(t, "u-1", gotIdentity.UserID)
	assert.Equal(t, time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC), gotInput.Date.UTC())

	assert.Contains(t, w.Body.String(), `"userId":"u-1"`)
	assert.Contains(t, w.Body.String(), `"createdAt":"2026-03-15T10:00:00Z"`)
}

func TestWorkoutHandler_Create_AcceptsDateLayouts(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	tests := map[string]time.Time{
		"2026-03-15":                time.Date(2026, 3, 15, 0, 0, 0, 0, loc),
		"2026-03-15T07:30":          time.Date(2026, 3, 15, 7, 30, 0, 0, loc),
		"2026-03-15T07:30:15":       time.Date(2026, 3, 15, 7, 30, 15, 0, loc),
		"2026-03-15T07:30:15.5Z":    time.Date(2026, 3, 15, 7, 30, 15, 500000000, time.UTC),
		"2026-03-15T07:30:15+02:00": time.Date(2026, 3, 15, 5, 30, 15, 0, time.UTC),
	}

	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			var got time.Time
			svc := &MockWorkoutService{
				CreateFunc: func(ctx context.Context, identity models.Identity, input models.WorkoutInput) (*models.Workout, error) {
					got = input.Date
					return &models.Workout{ID: "w", Date: input.Date}, nil
				},
			}
			h := NewWorkoutHandler(svc, loc, discardLogger())

			req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/api/workouts", WorkoutRequest{Title: "t", Date: raw, Type: "x"}), "u-1", "")
			w := httptest.NewRecorder()
			h.Create(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.True(t, want.Equal(got), "got %s want %s", got, want)
		})
	}
}

func TestWorkoutHandler_Create_MissingParameters(t *testing.T) {
	bodies := map[string]string{
		"no title":     `{"date":"2026-03-15","type":"cardio"}`,
		"no date":      `{"title":"Run","type":"cardio"}`,
		"no type":      `{"title":"Run","date":"2026-03-15"}`,
		"bad date":     `{"title":"Run","date":"yesterday","type":"cardio"}`,
		"empty body":   ``,
		"invalid json": `{"title":`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			svc := &MockWorkoutService{}
			h := newWorkoutHandler(svc)

			req := WithAuthContext(httptest.NewRequest(http.MethodPost, "/api/workouts", strings.NewReader(body)), "u-1", "")
			w := httptest.NewRecorder()
			h.Create(w, req)

			AssertErrorResponse(t, w, http.StatusBadRequest, "Missing Parameters")
			assert.Zero(t, svc.Calls, "service must not be reached")
		})
	}
}

func TestWorkoutHandler_Create_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "transient", err: models.ErrTransient, wantStatus: http.StatusServiceUnavailable, wantBody: `{"message":"Service temporarily unavailable"}`},
		{name: "internal", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantBody: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockWorkoutService{
				CreateFunc: func(ctx context.Context, identity models.Identity, input models.WorkoutInput) (*models.Workout, error) {
					return nil, tt.err
				},
			}
			h := newWorkoutHandler(svc)

			req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/api/workouts", WorkoutRequest{Title: "a", Date: "2026-03-15", Type: "b"}), "u-1", "")
			w := httptest.NewRecorder()
			h.Create(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestWorkoutHandler_Update(t *testing.T) {
	var gotID string
	svc := &MockWorkoutService{
		UpdateFunc: func(ctx context.Context, identity models.Identity, id string, input models.WorkoutInput) error {
			gotID = id
			return nil
		},
	}
	h := newWorkoutHandler(svc)

	req := NewTestRequest(t, http.MethodPut, "/api/workouts/w-7", WorkoutRequest{Title: "a", Date: "2026-03-15", Type: "b"})
	req = WithURLParam(WithAuthContext(req, "u-1", ""), "id", "w-7")
	w := httptest.NewRecorder()
	h.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, "w-7", gotID)
}

func TestWorkoutHandler_Update_NotFound(t *testing.T) {
	svc := &MockWorkoutService{
		UpdateFunc: func(ctx context.Context, identity models.Identity, id string, input models.WorkoutInput) error {
			return models.ErrNotFound
		},
	}
	h := newWorkoutHandler(svc)

	req := NewTestRequest(t, http.MethodPut, "/api/workouts/theirs", WorkoutRequest{Title: "a", Date: "2026-03-15", Type: "b"})
	req = WithURLParam(WithAuthContext(req, "u-1", ""), "id", "theirs")
	w := httptest.NewRecorder()
	h.Update(w, req)

	AssertErrorResponse(t, w, http.StatusNotFound, "Workout not found")
}

func TestWorkoutHandler_Update_MissingParameters(t *testing.T) {
	svc := &MockWorkoutService{}
	h := newWorkoutHandler(svc)

	req := NewTestRequest(t, http.MethodPut, "/api/workouts/w-1", map[string]string{"title": "only"})
	req = WithURLParam(WithAuthContext(req, "u-1", ""), "id", "w-1")
	w := httptest.NewRecorder()
	h.Update(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "Missing Parameters")
	assert.Zero(t, svc.Calls)
}

func TestWorkoutHandler_List(t *testing.T) {
	d0 := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	d1 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := &MockWorkoutService{
		ListRecentFunc: func(ctx context.Context, identity models.Identity) (models.WorkoutsByDay, error) {
			return models.WorkoutsByDay{
				"2026-03-15": {{ID: "b", Title: "B", Date: d0, UserID: identity.UserID}, {ID: "a", Title: "A", Date: d0.Add(-time.Hour), UserID: identity.UserID}},
				"2026-03-14": {{ID: "c", Title: "C", Date: d1, UserID: identity.UserID}},
			}, nil
		},
	}
	h := newWorkoutHandler(svc)

	req := WithAuthContext(httptest.NewRequest(http.MethodGet, "/api/workouts", nil), "u-1", "")
	w := httptest.NewRecorder()
	h.List(w, req)

	var resp struct {
		Success bool                         `json:"success"`
		Result  map[string][]WorkoutResponse `json:"result"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	require.Len(t, resp.Result, 2)
	require.Len(t, resp.Result["2026-03-15"], 2)
	assert.Equal(t, "b", resp.Result["2026-03-15"][0].ID)
	assert.Equal(t, "a", resp.Result["2026-03-15"][1].ID)
	assert.Equal(t, "c", resp.Result["2026-03-14"][0].ID)
}

func TestWorkoutHandler_List_Empty(t *testing.T) {
	h := newWorkoutHandler(&MockWorkoutService{})

	req := WithAuthContext(httptest.NewRequest(http.MethodGet, "/api/workouts", nil), "u-1", "")
	w := httptest.NewRecorder()
	h.List(w, req)

	var resp map[string]json.RawMessage
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.JSONEq(t, `{}`, string(resp["result"]))
}

func TestWorkoutHandler_List_Transient(t *testing.T) {
	svc := &MockWorkoutService{
		ListRecentFunc: func(ctx context.Context, identity models.Identity) (models.WorkoutsByDay, error) {
			return nil, models.ErrTransient
		},
	}
	h := newWorkoutHandler(svc)

	req := WithAuthContext(httptest.NewRequest(http.MethodGet, "/api/workouts", nil), "u-1", "")
	w := httptest.NewRecorder()
	h.List(w, req)

	AssertErrorResponse(t, w, http.StatusServiceUnavailable, "Service temporarily unavailable")
}

func TestWorkoutHandler_RequiresIdentity(t *testing.T) {
	svc := &MockWorkoutService{}
	h := newWorkoutHandler(svc)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/workouts", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
	assert.Zero(t, svc.Calls)
}
