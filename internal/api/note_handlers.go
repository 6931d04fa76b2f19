package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/readleafapp/readleaf-server/internal/domain"
	"github.com/readleafapp/readleaf-server/internal/http/response"
)

// NoteRequest is the payload for creating or updating a note.
type NoteRequest struct {
	ID         string `json:"id"`
	BookID     string `json:"bookId"     validate:"required"`
	CFI        string `json:"cfi"        validate:"required"`
	Text       string `json:"text"`
	Annotation string `json:"annotation"`
	Color      string `json:"color"`
}

// handleSaveNote creates a note, or updates one when an ID is given.
func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(&req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	note := &domain.Note{
		ID:         req.ID,
		BookID:     req.BookID,
		CFI:        req.CFI,
		Text:       req.Text,
		Annotation: req.Annotation,
		Color:      req.Color,
	}

	if err := s.annotations.SaveNote(r.Context(), note); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, note, s.logger)
}

// handleDeleteNote removes a note. Deleting a note that does not exist
// succeeds silently.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "id")
	if noteID == "" {
		response.BadRequest(w, "Note ID is required", s.logger)
		return
	}

	if err := s.annotations.DeleteNote(r.Context(), noteID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleSearchNotes searches highlight text and annotations across all
// books. Matches for deleted books come back with a nil book.
func (s *Server) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, "Query parameter 'q' is required", s.logger)
		return
	}

	matches, err := s.annotations.SearchNotes(r.Context(), query)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"matches": matches,
		"count":   len(matches),
	}, s.logger)
}
