package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by updates that matched no row.
var ErrNotFound = errors.New("record not found")

// User represents an account
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	ResumeText   string    `json:"-" db:"resume_text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasResume reports whether the user has uploaded résumé text.
func (u *User) HasResume() bool {
	return u.ResumeText != ""
}
