// Package types provides type definitions for structured data used throughout the interview coach.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty is the seniority level a question set targets.
type Difficulty string

const (
	// DifficultyEasy targets junior candidates
	DifficultyEasy Difficulty = "easy"
	// DifficultyMedium targets mid-level candidates
	DifficultyMedium Difficulty = "medium"
	// DifficultyHard targets senior candidates
	DifficultyHard Difficulty = "hard"
)

// Difficulties lists every recognized difficulty in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty converts user or provider input into a Difficulty.
// An empty string yields DifficultyMedium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (expected easy, medium or hard)", s)
	}
}

// Valid reports whether d is one of the recognized difficulties.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Question is a single interview prompt. Questions never change after the session is created.
type Question struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
}

// Answer is the evaluated response to one question.
type Answer struct {
	QuestionID string    `json:"question_id"`
	Text       string    `json:"answer"`
	Score      float64   `json:"score"`
	Feedback   string    `json:"feedback"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionState is derived from the answer count and never stored.
type SessionState string

const (
	// StateCreated means no question has been answered yet
	StateCreated SessionState = "created"
	// StateInProgress means some but not all questions are answered
	StateInProgress SessionState = "in_progress"
	// StateCompleted means every question has an answer
	StateCompleted SessionState = "completed"
)

// InterviewSession is one mock interview: a fixed ordered question set and
// at most one answer per question.
type InterviewSession struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Role       string     `json:"role"`
	Difficulty Difficulty `json:"difficulty"`
	Questions  []Question `json:"questions"`
	Answers    []Answer   `json:"answers"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AnswerWrite is what a store reports after writing an answer. Replaced and
// Answered are read inside the write's transaction.
type AnswerWrite struct {
	Answer Answer
	// Replaced is true when an earlier answer for the question was overwritten
	Replaced bool
	// Answered is the session's answer count after the write
	Answered int
}

// StateFor derives the lifecycle state from an answer count.
func StateFor(answered, questions int) SessionState {
	switch {
	case answered == 0:
		return StateCreated
	case answered >= questions:
		return StateCompleted
	default:
		return StateInProgress
	}
}

// State derives the lifecycle state from how many questions have answers.
func (s *InterviewSession) State() SessionState {
	return StateFor(len(s.Answers), len(s.Questions))
}

// Question returns the question with the given ID, or nil.
func (s *InterviewSession) Question(questionID string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return &s.Questions[i]
		}
	}
	return nil
}

// Answer returns the answer recorded for the given question ID, or nil.
func (s *InterviewSession) Answer(questionID string) *Answer {
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			return &s.Answers[i]
		}
	}
	return nil
}

// AverageScore is the mean answer score. A session without answers averages 0.
func (s *InterviewSession) AverageScore() float64 {
	if len(s.Answers) == 0 {
		return 0
	}
	var sum float64
	for _, a := range s.Answers {
		sum += a.Score
	}
	return sum / float64(len(s.Answers))
}

// SessionView is the API representation of a session, with derived fields filled in.
type SessionView struct {
	*InterviewSession
	State        SessionState `json:"state"`
	AverageScore float64      `json:"average_score"`
}

// NewSessionView wraps a session for serialization.
func NewSessionView(s *InterviewSession) SessionView {
	return SessionView{
		InterviewSession: s,
		State:            s.State(),
		AverageScore:     s.AverageScore(),
	}
}
