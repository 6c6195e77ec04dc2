package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BradenHooton/workout-tracker/internal/models"
	"github.com/BradenHooton/workout-tracker/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	var gotMeta services.LoginRequestMeta
	svc := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string, meta services.LoginRequestMeta) (*services.AuthResponse, error) {
			gotMeta = meta
			return &services.AuthResponse{
				User:  &services.UserResponse{ID: "u-1", Email: email, Name: "User"},
				Token: "jwt-token",
			}, nil
		},
	}
	h := NewAuthHandler(svc, discardLogger())

	req := NewTestRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "user@example.com", Password: "pw"})
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	h.Login(w, req)

	var resp struct {
		Success bool `json:"success"`
		Result  struct {
			User  map[string]any `json:"user"`
			Token string         `json:"token"`
		} `json:"result"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "jwt-token", resp.Result.Token)
	assert.Equal(t, "u-1", resp.Result.User["id"])
	assert.NotContains(t, resp.Result.User, "password")
	assert.NotContains(t, resp.Result.User, "passwordHash")
	assert.Equal(t, "192.0.2.10", gotMeta.IPAddress)
	assert.Equal(t, "test-agent", gotMeta.UserAgent)
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "invalid credentials",
			body:       `{"email":"user@example.com","password":"wrong"}`,
			serviceErr: models.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Invalid credentials"}`,
		},
		{
			name:       "store unavailable",
			body:       `{"email":"user@example.com","password":"pw"}`,
			serviceErr: models.ErrTransient,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"message":"Service temporarily unavailable"}`,
		},
		{
			name:       "unexpected",
			body:       `{"email":"user@example.com","password":"pw"}`,
			serviceErr: errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{}`,
		},
		{
			name:       "missing password",
			body:       `{"email":"user@example.com"}`,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Invalid credentials"}`,
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Invalid credentials"}`,
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"Invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &MockAuthService{
				LoginFunc: func(ctx context.Context, email, password string, meta services.LoginRequestMeta) (*services.AuthResponse, error) {
					called = true
					return nil, tt.serviceErr
				},
			}
			h := NewAuthHandler(svc, discardLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Login(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			if tt.serviceErr == nil {
				assert.False(t, called, "service must not be reached")
			}
		})
	}
}

func TestAuthHandler_Login_InternalErrorHidesDetail(t *testing.T) {
	svc := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string, meta services.LoginRequestMeta) (*services.AuthResponse, error) {
			return nil, errors.New("pq: relation users does not exist")
		},
	}
	h := NewAuthHandler(svc, discardLogger())

	w := httptest.NewRecorder()
	h.Login(w, NewTestRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "a@b.c", Password: "x"}))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req))

	req.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
