package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/jonathan/interview-coach/internal/types"
)

// handleUploadResume stores the caller's résumé text. The body is either
// {"text": "..."} or a text/plain document.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var raw string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		raw = string(body)
	} else {
		var req types.ResumeTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		raw = req.Text
	}

	meta, err := s.users.UpdateResume(r.Context(), userID, raw)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	s.logger.InfoContext(r.Context(), "resume stored",
		"user_id", userID, "characters", meta.Characters, "lines", meta.Lines, "hash", meta.Hash)
	jsonResponse(w, http.StatusOK, types.ResumeResponse{
		Message:    "Resume uploaded successfully",
		TextLength: meta.Characters,
	})
}
