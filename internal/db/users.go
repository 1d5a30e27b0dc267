package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateUser inserts a user and returns its ID. Emails are stored lowercased.
func (db *DB) CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		name, strings.ToLower(strings.TrimSpace(email)), passwordHash,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// GetUser retrieves a user by ID. Returns nil, nil if not found.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return db.queryUser(ctx, `WHERE id = $1`, id)
}

// GetUserByEmail retrieves a user by email (case-insensitive). Returns nil, nil if not found.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return db.queryUser(ctx, `WHERE email = $1`, email)
}

// CheckEmailExists reports whether an account already uses email.
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateResumeText replaces the stored résumé text for a user.
func (db *DB) UpdateResumeText(ctx context.Context, id uuid.UUID, text string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE users SET resume_text = $1, updated_at = NOW() WHERE id = $2`,
		text, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update resume text: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update resume text for %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user. Sessions are kept; they are keyed by owner ID only.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (db *DB) queryUser(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, resume_text, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.ResumeText, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
