package types

import "github.com/google/uuid"

// StartInterviewRequest is the body of POST /interview.
// Every field is optional; defaults are applied by the engine.
type StartInterviewRequest struct {
	Role          string `json:"role" validate:"omitempty,max=200"`
	Difficulty    string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	QuestionCount int    `json:"question_count"`
}

// StartInterviewResponse is returned once a session has been persisted.
type StartInterviewResponse struct {
	SessionID uuid.UUID  `json:"session_id"`
	Questions []Question `json:"questions"`
}

// SubmitAnswerRequest is the body of POST /interview/{id}/answer.
// An empty answer is allowed and still gets evaluated.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"max=20000"`
}

// SubmitAnswerResponse carries the evaluation of a single answer.
type SubmitAnswerResponse struct {
	QuestionID string       `json:"question_id"`
	Score      float64      `json:"score"`
	Feedback   string       `json:"feedback"`
	State      SessionState `json:"state"`
}

// ResumeTextRequest is the JSON form of POST /resume.
type ResumeTextRequest struct {
	Text string `json:"text" validate:"required"`
}

// ResumeResponse confirms a stored résumé.
type ResumeResponse struct {
	Message    string `json:"message"`
	TextLength int    `json:"text_length"`
}

// HistoryResponse lists past sessions, newest first.
type HistoryResponse struct {
	Sessions []SessionView `json:"sessions"`
	Count    int           `json:"count"`
}
