package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/auth"
	"github.com/BradenHooton/workout-tracker/internal/config"
	"github.com/BradenHooton/workout-tracker/internal/database"
	"github.com/BradenHooton/workout-tracker/internal/handlers"
	"github.com/BradenHooton/workout-tracker/internal/repositories"
	"github.com/BradenHooton/workout-tracker/internal/routes"
	"github.com/BradenHooton/workout-tracker/internal/services"
	pkglogger "github.com/BradenHooton/workout-tracker/pkg/logger"
)

// stores bundles the driver-specific repositories behind the service interfaces
type stores struct {
	users    services.UserStore
	workouts services.WorkoutStore
	health   routes.HealthChecker
	close    func()
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("store", cfg.Database.Driver),
		slog.String("alerts", cfg.Alert.Provider))

	loc, err := cfg.Server.Location()
	if err != nil {
		logger.Error("invalid timezone", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize database
	st, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize store", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.close()

	// Initialize auth components
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	tracker := auth.NewAttemptTracker(cfg.Auth.AlertThreshold, cfg.Auth.AlertWindow)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay:   time.Duration(cfg.Auth.TimingDelayBaseMs) * time.Millisecond,
		RandomDelay: time.Duration(cfg.Auth.TimingDelayRandomMs) * time.Millisecond,
	})
	auditLogger := pkglogger.NewAuditLogger(logger)

	notifier, err := newAlertNotifier(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize alert notifier", slog.Any("error", err))
		os.Exit(1)
	}
	dispatcher := services.NewAlertDispatcher(notifier, cfg.Alert.Timeout, logger, auditLogger)

	// Initialize services
	authService := services.NewAuthService(services.AuthServiceDeps{
		Users:        st.users,
		Tokens:       tokenManager,
		Tracker:      tracker,
		Alerts:       dispatcher,
		Timing:       timingDelay,
		StoreTimeout: cfg.Database.QueryTimeout,
		Logger:       logger,
		AuditLogger:  auditLogger,
	})
	workoutService := services.NewWorkoutService(st.workouts, cfg.Database.QueryTimeout, loc, logger)

	// Bootstrap the default user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureDefaultUser(ctx, authService, cfg.Seed, logger); err != nil {
		logger.Error("failed to ensure default user", slog.Any("error", err))
	}
	cancel()

	router := routes.NewRouter(routes.RouterConfig{
		AuthHandler:    handlers.NewAuthHandler(authService, logger),
		WorkoutHandler: handlers.NewWorkoutHandler(workoutService, loc, logger),
		Tokens:         tokenManager,
		Health:         st.health,
		Logger:         logger,
		Env:            cfg.Server.Env,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		LoginRateLimit: cfg.Auth.LoginRateLimit,
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// pending alerts are bounded by ALERT_TIMEOUT
	dispatcher.Wait()

	logger.Info("server stopped gracefully")
}

func openStores(cfg *config.Config, logger *slog.Logger) (*stores, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := database.NewSQLite(cfg.Database.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			users:    repositories.NewSQLiteUserRepository(db.DB),
			workouts: repositories.NewSQLiteWorkoutRepository(db.DB),
			health:   db,
			close:    db.Close,
		}, nil
	default:
		db, err := database.NewConnection(&cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			users:    repositories.NewUserRepository(db),
			workouts: repositories.NewWorkoutRepository(db),
			health:   db,
			close:    db.Close,
		}, nil
	}
}

func newAlertNotifier(cfg *config.Config, logger *slog.Logger) (services.AlertNotifier, error) {
	if cfg.Alert.Provider != config.AlertProviderSES {
		return services.NewLogAlertNotifier(logger), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return services.NewSESAlertNotifier(ctx, cfg.Alert.AWSRegion, cfg.Alert.FromAddress, cfg.Alert.AdminEmail, logger)
}

// ensureDefaultUser creates the seed account when DEFAULT_USER_EMAIL is set
func ensureDefaultUser(ctx context.Context, svc *services.AuthService, seed config.SeedUserConfig, logger *slog.Logger) error {
	if seed.Email == "" {
		logger.Info("no DEFAULT_USER_EMAIL set, skipping default user creation")
		return nil
	}

	var birthdate time.Time
	if seed.Birthdate != "" {
		parsed, err := time.Parse("2006-01-02", seed.Birthdate)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_USER_BIRTHDATE: %w", err)
		}
		birthdate = parsed
	}

	created, err := svc.EnsureDefaultUser(ctx, services.DefaultUser{
		Email:     seed.Email,
		Password:  seed.Password,
		Name:      seed.Name,
		Birthdate: birthdate,
	})
	if err != nil {
		return err
	}
	if !created {
		logger.Info("default user already exists")
	}
	return nil
}
