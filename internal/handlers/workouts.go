package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/auth"
	"github.com/BradenHooton/workout-tracker/internal/models"
	pkghttp "github.com/BradenHooton/workout-tracker/pkg/http"
	"github.com/go-chi/chi/v5"
)

// WorkoutServiceInterface defines the workout operations exposed over HTTP
type WorkoutServiceInterface interface {
	ListRecent(ctx context.Context, identity models.Identity) (models.WorkoutsByDay, error)
	Create(ctx context.Context, identity models.Identity, input models.WorkoutInput) (*models.Workout, error)
	Update(ctx context.Context, identity models.Identity, id string, input models.WorkoutInput) error
}

// WorkoutHandler handles workout HTTP requests. Every route sits behind the
// auth middleware.
type WorkoutHandler struct {
	service  WorkoutServiceInterface
	location *time.Location
	logger   *slog.Logger
}

// NewWorkoutHandler creates a new WorkoutHandler; zoneless dates are read in loc
func NewWorkoutHandler(service WorkoutServiceInterface, loc *time.Location, logger *slog.Logger) *WorkoutHandler {
	if loc == nil {
		loc = time.Local
	}
	return &WorkoutHandler{service: service, location: loc, logger: logger}
}

// WorkoutRequest is the body of create and update
type WorkoutRequest struct {
	Title string `json:"title" validate:"required"`
	Date  string `json:"date" validate:"required"`
	Type  string `json:"type" validate:"required"`
}

// WorkoutResponse is the wire form of a workout
type WorkoutResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// accepted date layouts, most specific first; layouts without a zone use the handler location
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (h *WorkoutHandler) parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, h.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toInput validates the body. An unparseable date counts as missing.
func (h *WorkoutHandler) toInput(req WorkoutRequest) (models.WorkoutInput, bool) {
	if err := ValidateRequest(req); err != nil {
		return models.WorkoutInput{}, false
	}
	date, ok := h.parseDate(req.Date)
	if !ok {
		return models.WorkoutInput{}, false
	}
	return models.WorkoutInput{Title: req.Title, Date: date, Type: req.Type}, true
}

// List handles GET /api/workouts
func (h *WorkoutHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	grouped, err := h.service.ListRecent(r.Context(), identity)
	if err != nil {
		h.writeServiceError(w, err, "list workouts")
		return
	}

	result := make(map[string][]WorkoutResponse, len(grouped))
	for day, workouts := range grouped {
		items := make([]WorkoutResponse, 0, len(workouts))
		for _, workout := range workouts {
			items = append(items, workoutToResponse(workout))
		}
		result[day] = items
	}

	pkghttp.WriteSuccess(w, result)
}

// Create handles POST /api/workouts
func (h *WorkoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req WorkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Missing Parameters")
		return
	}
	input, ok := h.toInput(req)
	if !ok {
		pkghttp.WriteBadRequest(w, "Missing Parameters")
		return
	}

	created, err := h.service.Create(r.Context(), identity, input)
	if err != nil {
		h.writeServiceError(w, err, "create workout")
		return
	}

	pkghttp.WriteSuccess(w, workoutToResponse(created))
}

// Update handles PUT /api/workouts/{id}
func (h *WorkoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		pkghttp.WriteBadRequest(w, "Missing Parameters")
		return
	}

	var req WorkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Missing Parameters")
		return
	}
	input, ok := h.toInput(req)
	if !ok {
		pkghttp.WriteBadRequest(w, "Missing Parameters")
		return
	}

	if err := h.service.Update(r.Context(), identity, id, input); err != nil {
		h.writeServiceError(w, err, "update workout")
		return
	}

	pkghttp.WriteSuccess(w, nil)
}

func (h *WorkoutHandler) identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity := auth.GetIdentityFromContext(r)
	if identity == nil {
		pkghttp.WriteEmpty(w, http.StatusUnauthorized)
		return models.Identity{}, false
	}
	return *identity, true
}

func (h *WorkoutHandler) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, models.ErrMissingParameters):
		pkghttp.WriteBadRequest(w, "Missing Parameters")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Workout not found")
	case errors.Is(err, models.ErrUnauthenticated):
		pkghttp.WriteEmpty(w, http.StatusUnauthorized)
	case errors.Is(err, models.ErrTransient):
		pkghttp.WriteServiceUnavailable(w)
	default:
		h.logger.Error("failed to "+op, slog.Any("error", err))
		pkghttp.WriteInternalError(w, "")
	}
}

func workoutToResponse(w *models.Workout) WorkoutResponse {
	return WorkoutResponse{
		ID:        w.ID,
		Title:     w.Title,
		Date:      w.Date.UTC().Format(time.RFC3339),
		Type:      w.Type,
		UserID:    w.UserID,
		CreatedAt: w.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
