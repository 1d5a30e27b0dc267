package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/db"
)

// CreateUser inserts a user and returns its ID. Emails are stored lowercased.
func (s *DB) CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	now := toUnix(time.Now())

	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), name, strings.ToLower(strings.TrimSpace(email)), passwordHash, now, now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// GetUser retrieves a user by ID. Returns nil, nil if not found.
func (s *DB) GetUser(ctx context.Context, id uuid.UUID) (*db.User, error) {
	return s.queryUser(ctx, `WHERE id = ?`, id.String())
}

// GetUserByEmail retrieves a user by email (case-insensitive). Returns nil, nil if not found.
func (s *DB) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return s.queryUser(ctx, `WHERE email = ?`, email)
}

// CheckEmailExists reports whether an account already uses email.
func (s *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.sql.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateResumeText replaces the stored résumé text for a user.
func (s *DB) UpdateResumeText(ctx context.Context, id uuid.UUID, text string) error {
	res, err := s.sql.ExecContext(ctx,
		`UPDATE users SET resume_text = ?, updated_at = ? WHERE id = ?`,
		text, toUnix(time.Now()), id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update resume text: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update resume text for %s: %w", id, db.ErrNotFound)
	}
	return nil
}

func (s *DB) queryUser(ctx context.Context, where string, arg any) (*db.User, error) {
	var (
		user             db.User
		id               string
		created, updated int64
	)
	err := s.sql.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, resume_text, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(&id, &user.Name, &user.Email, &user.PasswordHash, &user.ResumeText, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", id, err)
	}
	user.CreatedAt = fromUnix(created)
	user.UpdatedAt = fromUnix(updated)
	return &user, nil
}
