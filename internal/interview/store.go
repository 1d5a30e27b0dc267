package interview

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
)

// Store persists sessions. Implementations live in internal/db (PostgreSQL)
// and internal/db/sqlite.
type Store interface {
	// CreateSession persists a session with its questions and no answers.
	CreateSession(ctx context.Context, session *types.InterviewSession) error
	// GetSession loads a session with questions in order and answers in question order.
	// It returns nil, nil when the session does not exist.
	GetSession(ctx context.Context, id uuid.UUID) (*types.InterviewSession, error)
	// UpsertAnswer atomically inserts or replaces the answer for
	// (sessionID, answer.QuestionID) and bumps the session's updated_at.
	// A replaced answer keeps its original CreatedAt. Replaced and Answered in
	// the result are read inside the write's transaction.
	UpsertAnswer(ctx context.Context, sessionID uuid.UUID, answer types.Answer) (*types.AnswerWrite, error)
	// ListSessionsByOwner returns the owner's sessions, newest first.
	// limit <= 0 returns every session.
	ListSessionsByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]types.InterviewSession, error)
}
