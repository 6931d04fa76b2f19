package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/readleafapp/readleaf-server/internal/domain"
	"github.com/readleafapp/readleaf-server/internal/http/response"
)

// SettingsRequest is the payload for replacing the user settings.
type SettingsRequest struct {
	Theme      string `json:"theme"       validate:"required"`
	FontSize   int    `json:"font_size"   validate:"required"`
	FontFamily string `json:"font_family"`
}

// FontSizeStepRequest nudges the font size by a relative amount.
type FontSizeStepRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// handleGetSettings returns the current user settings, falling back to
// defaults when nothing has been saved yet.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	response.Success(w, s.settings.Get(r.Context()), s.logger)
}

// handleUpdateSettings replaces the settings wholesale.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(&req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	updated, err := s.settings.Update(r.Context(), &domain.UserSettings{
		Theme:      domain.Theme(req.Theme),
		FontSize:   req.FontSize,
		FontFamily: req.FontFamily,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, updated, s.logger)
}

// handleStepFontSize adjusts the font size by a delta, clamped to the
// allowed range.
func (s *Server) handleStepFontSize(w http.ResponseWriter, r *http.Request) {
	var req FontSizeStepRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if req.Delta == 0 {
		response.BadRequest(w, "Delta must be non-zero", s.logger)
		return
	}

	updated, err := s.settings.StepFontSize(r.Context(), req.Delta)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, updated, s.logger)
}
