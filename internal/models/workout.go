package models

import "time"

// Workout is a single logged session owned by exactly one user
type Workout struct {
	ID        string
	Title     string
	Date      time.Time
	Type      string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkoutInput carries the writable fields of a workout
type WorkoutInput struct {
	Title string
	Date  time.Time
	Type  string
}

// Missing reports whether any required field is absent
func (in WorkoutInput) Missing() bool {
	return in.Title == "" || in.Type == "" || in.Date.IsZero()
}

// WorkoutsByDay maps a YYYY-MM-DD day key to that day's workouts, newest first
type WorkoutsByDay map[string][]*Workout
