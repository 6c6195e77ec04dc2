package models

import (
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Birthdate    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
