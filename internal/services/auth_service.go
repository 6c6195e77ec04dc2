package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/auth"
	"github.com/BradenHooton/workout-tracker/internal/models"
	pkgauth "github.com/BradenHooton/workout-tracker/pkg/auth"
	pkglogger "github.com/BradenHooton/workout-tracker/pkg/logger"
)

// DefaultStoreTimeout bounds every store call made by a service
const DefaultStoreTimeout = 5 * time.Second

// UserStore defines the user operations the auth flow needs
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// TokenIssuer mints session tokens
type TokenIssuer interface {
	IssueToken(identity models.Identity) (string, error)
}

// AlertSink accepts brute-force alerts for delivery
type AlertSink interface {
	Dispatch(alert *auth.BruteForceAlert)
}

// AuthService handles authentication business logic
type AuthService struct {
	users        UserStore
	tokens       TokenIssuer
	tracker      *auth.AttemptTracker
	alerts       AlertSink
	timing       *auth.TimingDelay
	storeTimeout time.Duration
	logger       *slog.Logger
	auditLogger  *pkglogger.AuditLogger
}

// AuthServiceDeps groups the collaborators of AuthService
type AuthServiceDeps struct {
	Users        UserStore
	Tokens       TokenIssuer
	Tracker      *auth.AttemptTracker
	Alerts       AlertSink
	Timing       *auth.TimingDelay
	StoreTimeout time.Duration
	Logger       *slog.Logger
	AuditLogger  *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(deps AuthServiceDeps) *AuthService {
	if deps.StoreTimeout <= 0 {
		deps.StoreTimeout = DefaultStoreTimeout
	}
	if deps.Tracker == nil {
		deps.Tracker = auth.NewAttemptTracker(auth.DefaultAlertThreshold, auth.DefaultAlertWindow)
	}
	return &AuthService{
		users:        deps.Users,
		tokens:       deps.Tokens,
		tracker:      deps.Tracker,
		alerts:       deps.Alerts,
		timing:       deps.Timing,
		storeTimeout: deps.StoreTimeout,
		logger:       deps.Logger,
		auditLogger:  deps.AuditLogger,
	}
}

// UserResponse is the public view of a user; it never carries the password hash
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Birthdate string `json:"birthdate,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// AuthResponse is the result of a successful login
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

// LoginRequestMeta carries request details recorded in the audit log
type LoginRequestMeta struct {
	IPAddress string
	UserAgent string
}

// NormalizeEmail is the canonical form of a login key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies credentials and returns a session token.
// Unknown emails and wrong passwords both return models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string, meta LoginRequestMeta) (*AuthResponse, error) {
	start := time.Now()
	email = NormalizeEmail(email)

	if email == "" || password == "" {
		s.recordFailure(meta, "", email, "missing_credentials")
		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.lookupUser(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			s.recordFailure(meta, "", email, "unknown_email")
			s.timing.WaitFrom(start, false)
			return nil, models.ErrInvalidCredentials
		}
		if errors.Is(err, models.ErrTransient) {
			s.logger.Warn("user store unavailable during login", slog.Any("error", err))
			return nil, models.ErrTransient
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !pkgauth.VerifyPassword(user.PasswordHash, password) {
		s.logger.Info("login failed: invalid credentials", slog.String("user_id", user.ID))
		s.recordFailure(meta, user.ID, email, "invalid_password")

		if alert := s.tracker.RecordFailure(email); alert != nil {
			s.raiseAlert(alert, meta)
		}

		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	s.tracker.RecordSuccess(email)

	token, err := s.tokens.IssueToken(models.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventLoginSuccess,
		UserID:    user.ID,
		Email:     email,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	return &AuthResponse{
		User:  userModelToResponse(user),
		Token: token,
	}, nil
}

func (s *AuthService) lookupUser(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.users.GetByEmail(ctx, email)
}

func (s *AuthService) recordFailure(meta LoginRequestMeta, userID, email, reason string) {
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     pkglogger.EventLoginFailed,
		UserID:        userID,
		Email:         email,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		FailureReason: reason,
	})
}

func (s *AuthService) raiseAlert(alert *auth.BruteForceAlert, meta LoginRequestMeta) {
	s.auditLogger.LogSecurityAlert(pkglogger.AuditEvent{
		EventType: pkglogger.EventBruteForceAlert,
		Email:     alert.Identity,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Metadata: map[string]string{
			"attempts": fmt.Sprintf("%d", alert.Attempts),
			"window":   alert.Window.String(),
		},
	})
	if s.alerts != nil {
		s.alerts.Dispatch(alert)
	}
}

// DefaultUser describes the account created at startup when none exists
type DefaultUser struct {
	Email     string
	Password  string
	Name      string
	Birthdate time.Time
}

// EnsureDefaultUser creates the default account unless a user with that email
// already exists. It reports whether a user was created.
func (s *AuthService) EnsureDefaultUser(ctx context.Context, def DefaultUser) (bool, error) {
	email := NormalizeEmail(def.Email)
	if email == "" {
		return false, nil
	}

	_, err := s.lookupUser(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, fmt.Errorf("failed to check default user: %w", err)
	}

	hash, err := pkgauth.HashPassword(def.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash default user password: %w", err)
	}

	name := strings.TrimSpace(def.Name)
	if name == "" {
		name = email
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	created, err := s.users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Birthdate:    def.Birthdate,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create default user: %w", err)
	}

	s.logger.Info("default user created",
		slog.String("user_id", created.ID),
		slog.String("email", pkglogger.SanitizedEmail(email)))
	return true, nil
}

func userModelToResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !user.Birthdate.IsZero() {
		resp.Birthdate = user.Birthdate.Format("2006-01-02")
	}
	return resp
}
