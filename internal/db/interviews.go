package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/interview-coach/internal/types"
)

// CreateSession inserts a session and its ordered questions in one transaction.
func (db *DB) CreateSession(ctx context.Context, session *types.InterviewSession) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO interview_sessions (id, owner_id, role, difficulty, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		session.ID, session.OwnerID, session.Role, string(session.Difficulty),
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	batch := &pgx.Batch{}
	for i, q := range session.Questions {
		batch.Queue(
			`INSERT INTO interview_questions (session_id, position, question_id, text, difficulty)
			 VALUES ($1, $2, $3, $4, $5)`,
			session.ID, i, q.ID, q.Text, string(q.Difficulty),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert questions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// GetSession loads a session by ID. Returns nil, nil if not found.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*types.InterviewSession, error) {
	var (
		session    types.InterviewSession
		difficulty string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, role, difficulty, created_at, updated_at
		 FROM interview_sessions WHERE id = $1`,
		id,
	).Scan(&session.ID, &session.OwnerID, &session.Role, &difficulty, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.Difficulty = types.Difficulty(difficulty)
	session.Questions = []types.Question{}
	session.Answers = []types.Answer{}

	sessions := []types.InterviewSession{session}
	if err := db.attachChildren(ctx, sessions, []uuid.UUID{id}); err != nil {
		return nil, err
	}
	return &sessions[0], nil
}

// UpsertAnswer inserts or replaces the answer for one question and bumps the
// session's updated_at, atomically. The session row is updated first; its row
// lock serializes writers to the same session, so the answer count read at the
// end includes every earlier committed write.
func (db *DB) UpsertAnswer(ctx context.Context, sessionID uuid.UUID, answer types.Answer) (*types.AnswerWrite, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`UPDATE interview_sessions SET updated_at = GREATEST(updated_at, $1) WHERE id = $2`,
		answer.UpdatedAt, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	// xmax is zero for a freshly inserted row and set when ON CONFLICT updated one
	var replaced bool
	err = tx.QueryRow(ctx,
		`INSERT INTO interview_answers
		   (session_id, question_id, answer_text, score, feedback, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_id, question_id) DO UPDATE SET
		   answer_text = EXCLUDED.answer_text,
		   score = EXCLUDED.score,
		   feedback = EXCLUDED.feedback,
		   updated_at = EXCLUDED.updated_at
		 RETURNING created_at, updated_at, (xmax <> 0)`,
		sessionID, answer.QuestionID, answer.Text, answer.Score, answer.Feedback,
		answer.CreatedAt, answer.UpdatedAt,
	).Scan(&answer.CreatedAt, &answer.UpdatedAt, &replaced)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert answer %s: %w", answer.QuestionID, err)
	}

	var answered int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM interview_answers WHERE session_id = $1`,
		sessionID,
	).Scan(&answered)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit answer: %w", err)
	}
	return &types.AnswerWrite{Answer: answer, Replaced: replaced, Answered: answered}, nil
}

// ListSessionsByOwner returns the owner's sessions, newest first. limit <= 0 means all.
func (db *DB) ListSessionsByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]types.InterviewSession, error) {
	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, owner_id, role, difficulty, created_at, updated_at
		 FROM interview_sessions
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2`,
		ownerID, limitArg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []types.InterviewSession{}
	var ids []uuid.UUID
	for rows.Next() {
		var (
			session    types.InterviewSession
			difficulty string
		)
		if err := rows.Scan(&session.ID, &session.OwnerID, &session.Role, &difficulty, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		session.Difficulty = types.Difficulty(difficulty)
		session.Questions = []types.Question{}
		session.Answers = []types.Answer{}
		sessions = append(sessions, session)
		ids = append(ids, session.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	if err := db.attachChildren(ctx, sessions, ids); err != nil {
		return nil, err
	}
	return sessions, nil
}

// attachChildren loads questions and answers for the given sessions in one
// query and attaches them in question order.
func (db *DB) attachChildren(ctx context.Context, sessions []types.InterviewSession, ids []uuid.UUID) error {
	index := make(map[uuid.UUID]*types.InterviewSession, len(sessions))
	for i := range sessions {
		index[sessions[i].ID] = &sessions[i]
	}

	rows, err := db.pool.Query(ctx,
		`SELECT q.session_id, q.question_id, q.text, q.difficulty,
		        a.answer_text, a.score, a.feedback, a.created_at, a.updated_at
		 FROM interview_questions q
		 LEFT JOIN interview_answers a
		   ON a.session_id = q.session_id AND a.question_id = q.question_id
		 WHERE q.session_id = ANY($1)
		 ORDER BY q.session_id, q.position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sessionID                   uuid.UUID
			questionID, text, diff      string
			answerText, feedback        *string
			score                       *float64
			answerCreated, answerUpdate *time.Time
		)
		if err := rows.Scan(&sessionID, &questionID, &text, &diff,
			&answerText, &score, &feedback, &answerCreated, &answerUpdate); err != nil {
			return fmt.Errorf("failed to scan question: %w", err)
		}

		session, ok := index[sessionID]
		if !ok {
			continue
		}
		session.Questions = append(session.Questions, types.Question{
			ID:         questionID,
			Text:       text,
			Difficulty: types.Difficulty(diff),
		})
		if score != nil {
			session.Answers = append(session.Answers, types.Answer{
				QuestionID: questionID,
				Text:       deref(answerText),
				Score:      *score,
				Feedback:   deref(feedback),
				CreatedAt:  derefTime(answerCreated),
				UpdatedAt:  derefTime(answerUpdate),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate questions: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
