package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/readleafapp/readleaf-server/internal/http/response"
)

// PositionRequest reports the reader's current locator.
type PositionRequest struct {
	Locator string `json:"locator" validate:"required"`
}

// SelectionRequest captures a text selection inside the open book.
type SelectionRequest struct {
	CFI     string `json:"cfi" validate:"required"`
	Excerpt string `json:"excerpt"`
}

// handleGetSession returns the current reading session snapshot.
func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.session.Current(), s.logger)
}

// handleOpenSession opens a book for reading. An already-open session
// is closed first; a failed open leaves the session in the error state
// with a user-facing message.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	session, err := s.session.Open(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, session, s.logger)
}

// handleUpdatePosition records a new reading position and returns the
// session with recomputed progress.
func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(&req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	session, err := s.session.UpdatePosition(req.Locator)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, session, s.logger)
}

// handleProposeAnnotation turns a selection into a note draft bound to
// the open book.
func (s *Server) handleProposeAnnotation(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(&req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	draft, err := s.session.ProposeAnnotation(req.CFI, req.Excerpt)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, draft, s.logger)
}

// handleCloseSession closes the session. Closing is unconditional and
// idempotent, from any state.
func (s *Server) handleCloseSession(w http.ResponseWriter, _ *http.Request) {
	s.session.Close()
	response.Success(w, s.session.Current(), s.logger)
}
