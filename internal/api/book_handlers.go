package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/readleafapp/readleaf-server/internal/http/response"
)

// maxUploadSize caps EPUB uploads at 64 MiB.
const maxUploadSize = 64 << 20

// handleListBooks returns every book in the library.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books := s.catalog.ListBooks(r.Context())
	response.Success(w, map[string]any{
		"books": books,
		"count": len(books),
	}, s.logger)
}

// handleImportBook accepts a multipart EPUB upload and adds it to the
// library. The display name is taken from the uploaded filename with
// the extension stripped.
func (s *Server) handleImportBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "Invalid multipart upload", s.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field", s.logger)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("Failed to read upload", "error", err, "filename", header.Filename)
		response.InternalError(w, "Failed to read upload", s.logger)
		return
	}

	name := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	book, err := s.catalog.ImportBook(ctx, raw, name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleGetBook returns a single book record.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	book, err := s.catalog.GetBook(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleGetBookContent streams the stored EPUB bytes.
func (s *Server) handleGetBookContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	book, err := s.catalog.GetBook(ctx, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	data, err := s.catalog.GetBookData(ctx, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "application/epub+zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", book.Title+".epub"))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("Failed to stream book content", "error", err, "book_id", bookID)
	}
}

// handleListBookNotes returns the notes attached to one book.
func (s *Server) handleListBookNotes(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	notes, err := s.annotations.NotesForBook(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"notes": notes,
		"count": len(notes),
	}, s.logger)
}

// handleRemoveBook deletes a book and its stored content. Notes that
// reference the book are left in place.
func (s *Server) handleRemoveBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	if err := s.catalog.RemoveBook(r.Context(), bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
