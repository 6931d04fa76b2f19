package api

import (
	"encoding/json/v2"
	"fmt"
	"net/http"

	"github.com/readleafapp/readleaf-server/internal/domain"
	"github.com/readleafapp/readleaf-server/internal/http/response"
)

// DownloadRequest identifies an external book to pull into the library.
type DownloadRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"       validate:"required"`
	Author      string `json:"author"`
	DownloadURL string `json:"downloadUrl"`
}

// handleSearch runs the unified search: external catalog results and
// local note matches, joined under one response. An unreachable
// upstream degrades the external leg instead of failing the request.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		response.BadRequest(w, "Query parameter 'keyword' is required", s.logger)
		return
	}

	results, err := s.search.Run(r.Context(), keyword)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, results, s.logger)
}

// handleDownloadProxy fetches an external EPUB and streams it back
// without touching the library. Sentinel URLs are rejected before any
// network call is made.
func (s *Server) handleDownloadProxy(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		response.BadRequest(w, "Query parameter 'url' is required", s.logger)
		return
	}

	data, err := s.discovery.ResolveDownload(r.Context(), &domain.ExternalBook{DownloadURL: url})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "application/epub+zip")
	w.Header().Set("Content-Disposition", `attachment; filename="book.epub"`)
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("Failed to stream download", "error", err)
	}
}

// handleDownloadBook pulls an external book into the library. Only one
// download runs at a time; a second request while one is in flight is
// rejected with a conflict.
func (s *Server) handleDownloadBook(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(&req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.discovery.Download(r.Context(), &domain.ExternalBook{
		ID:          req.ID,
		Title:       req.Title,
		Author:      req.Author,
		DownloadURL: req.DownloadURL,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}
