package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/types"
)

// handleStartInterview builds a question set for the caller and persists a new session.
// The caller's stored résumé, if any, personalizes the questions.
func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req types.StartInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.authHandler.validator.Struct(req); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	resumeText, err := s.users.ResumeText(r.Context(), userID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	session, err := s.interviews.StartSession(r.Context(), interview.StartSessionInput{
		OwnerID:    userID,
		Role:       req.Role,
		Difficulty: req.Difficulty,
		Count:      req.QuestionCount,
		ResumeText: resumeText,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	jsonResponse(w, http.StatusCreated, types.StartInterviewResponse{
		SessionID: session.ID,
		Questions: session.Questions,
	})
}

// handleSubmitAnswer evaluates and records one answer.
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var req types.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.authHandler.validator.Struct(req); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	result, err := s.interviews.SubmitAnswer(r.Context(), userID, sessionID, req.QuestionID, req.Answer)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	jsonResponse(w, http.StatusOK, types.SubmitAnswerResponse{
		QuestionID: result.Answer.QuestionID,
		Score:      result.Answer.Score,
		Feedback:   result.Answer.Feedback,
		State:      result.State,
	})
}

// handleResult returns the full session with every answer given so far.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	session, err := s.interviews.GetResult(r.Context(), userID, sessionID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	jsonResponse(w, http.StatusOK, types.NewSessionView(session))
}

// handleHistory lists the caller's sessions, newest first. ?limit=N is optional.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := s.interviews.ListHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	views := make([]types.SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, types.NewSessionView(&sessions[i]))
	}
	jsonResponse(w, http.StatusOK, types.HistoryResponse{Sessions: views, Count: len(views)})
}

// handleStatistics aggregates every session the caller has.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	stats, err := s.interviews.Statistics(r.Context(), userID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	jsonResponse(w, http.StatusOK, stats)
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}
