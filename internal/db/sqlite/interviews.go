package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
)

// CreateSession inserts a session and its ordered questions in one transaction.
func (s *DB) CreateSession(ctx context.Context, session *types.InterviewSession) error {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO interview_sessions (id, owner_id, role, difficulty, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID.String(), session.OwnerID.String(), session.Role, string(session.Difficulty),
		toUnix(session.CreatedAt), toUnix(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	for i, q := range session.Questions {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO interview_questions (session_id, position, question_id, text, difficulty)
			 VALUES (?, ?, ?, ?, ?)`,
			session.ID.String(), i, q.ID, q.Text, string(q.Difficulty),
		)
		if err != nil {
			return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// GetSession loads a session by ID. Returns nil, nil if not found.
func (s *DB) GetSession(ctx context.Context, id uuid.UUID) (*types.InterviewSession, error) {
	session, err := scanSession(s.sql.QueryRowContext(ctx,
		`SELECT id, owner_id, role, difficulty, created_at, updated_at
		 FROM interview_sessions WHERE id = ?`,
		id.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sessions := []types.InterviewSession{*session}
	if err := attachChildren(ctx, s.sql, sessions, `WHERE q.session_id = ?`, id.String()); err != nil {
		return nil, err
	}
	return &sessions[0], nil
}

// UpsertAnswer inserts or replaces the answer for one question and bumps the
// session's updated_at, atomically. The session row is written first so
// writers to the same session serialize before the answer count is read.
func (s *DB) UpsertAnswer(ctx context.Context, sessionID uuid.UUID, answer types.Answer) (*types.AnswerWrite, error) {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`UPDATE interview_sessions SET updated_at = MAX(updated_at, ?) WHERE id = ?`,
		toUnix(answer.UpdatedAt), sessionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interview_answers WHERE session_id = ? AND question_id = ?`,
		sessionID.String(), answer.QuestionID,
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check answer %s: %w", answer.QuestionID, err)
	}

	var createdAt, updatedAt int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO interview_answers
		   (session_id, question_id, answer_text, score, feedback, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id, question_id) DO UPDATE SET
		   answer_text = excluded.answer_text,
		   score = excluded.score,
		   feedback = excluded.feedback,
		   updated_at = excluded.updated_at
		 RETURNING created_at, updated_at`,
		sessionID.String(), answer.QuestionID, answer.Text, answer.Score, answer.Feedback,
		toUnix(answer.CreatedAt), toUnix(answer.UpdatedAt),
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert answer %s: %w", answer.QuestionID, err)
	}

	var answered int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interview_answers WHERE session_id = ?`,
		sessionID.String(),
	).Scan(&answered)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit answer: %w", err)
	}

	answer.CreatedAt = fromUnix(createdAt)
	answer.UpdatedAt = fromUnix(updatedAt)
	return &types.AnswerWrite{Answer: answer, Replaced: existing > 0, Answered: answered}, nil
}

// ListSessionsByOwner returns the owner's sessions, newest first. limit <= 0 means all.
// Sessions and their children are read in one transaction so the limit window
// cannot shift between the two queries.
func (s *DB) ListSessionsByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]types.InterviewSession, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, owner_id, role, difficulty, created_at, updated_at
		 FROM interview_sessions
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id
		 LIMIT ?`,
		ownerID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []types.InterviewSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	_ = rows.Close()
	if len(sessions) == 0 {
		return sessions, nil
	}

	err = attachChildren(ctx, tx, sessions,
		`WHERE q.session_id IN (
		   SELECT id FROM interview_sessions WHERE owner_id = ?
		   ORDER BY created_at DESC, id LIMIT ?)`,
		ownerID.String(), limit,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session listing: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*types.InterviewSession, error) {
	var (
		session              types.InterviewSession
		id, ownerID, diff    string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &ownerID, &session.Role, &diff, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if session.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt session id %q: %w", id, err)
	}
	if session.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, fmt.Errorf("corrupt owner id %q: %w", ownerID, err)
	}
	session.Difficulty = types.Difficulty(diff)
	session.CreatedAt = fromUnix(createdAt)
	session.UpdatedAt = fromUnix(updatedAt)
	session.Questions = []types.Question{}
	session.Answers = []types.Answer{}
	return &session, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// attachChildren loads questions and answers for the sessions selected by
// where (which filters on q.session_id) and attaches them in question order.
func attachChildren(ctx context.Context, q querier, sessions []types.InterviewSession, where string, args ...any) error {
	index := make(map[string]*types.InterviewSession, len(sessions))
	for i := range sessions {
		index[sessions[i].ID.String()] = &sessions[i]
	}

	rows, err := q.QueryContext(ctx,
		`SELECT q.session_id, q.question_id, q.text, q.difficulty,
		        a.answer_text, a.score, a.feedback, a.created_at, a.updated_at
		 FROM interview_questions q
		 LEFT JOIN interview_answers a
		   ON a.session_id = q.session_id AND a.question_id = q.question_id
		 `+where+`
		 ORDER BY q.session_id, q.position`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sessionID, questionID, text, diff string
			answerText, feedback              sql.NullString
			score                             sql.NullFloat64
			createdAt, updatedAt              sql.NullInt64
		)
		if err := rows.Scan(&sessionID, &questionID, &text, &diff,
			&answerText, &score, &feedback, &createdAt, &updatedAt); err != nil {
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
		if score.Valid {
			session.Answers = append(session.Answers, types.Answer{
				QuestionID: questionID,
				Text:       answerText.String,
				Score:      score.Float64,
				Feedback:   feedback.String,
				CreatedAt:  fromUnix(createdAt.Int64),
				UpdatedAt:  fromUnix(updatedAt.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate questions: %w", err)
	}
	return nil
}
