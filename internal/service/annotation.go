package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/readleafapp/readleaf-server/internal/domain"
	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
	"github.com/readleafapp/readleaf-server/internal/id"
	"github.com/readleafapp/readleaf-server/internal/notesync"
	"github.com/readleafapp/readleaf-server/internal/store"
)

// AnnotationService manages notes anchored to positions inside books.
type AnnotationService struct {
	store   *store.Store
	catalog *CatalogService
	hook    notesync.Hook
	logger  *slog.Logger
}

// NewAnnotationService creates an annotation service.
func NewAnnotationService(st *store.Store, catalog *CatalogService, hook notesync.Hook, logger *slog.Logger) *AnnotationService {
	if hook == nil {
		hook = notesync.NoopHook{}
	}
	return &AnnotationService{
		store:   st,
		catalog: catalog,
		hook:    hook,
		logger:  logger,
	}
}

// SaveNote persists a note, assigning identity and creation time for
// new notes. The book reference is soft-checked: a note against a book
// that has since disappeared is still saved (it will surface as an
// orphan in search), only logged.
//
// Updating an existing note only takes Annotation and Color from the
// caller: the excerpt, anchor, and creation time are snapshots taken
// when the note was made and keep their stored values.
//
// After a successful save the external sync hook fires; it is
// fire-and-forget and its outcome never reaches the caller.
func (s *AnnotationService) SaveNote(ctx context.Context, note *domain.Note) error {
	if note.BookID == "" {
		return apperrors.Validation("note book_id is required")
	}
	if note.CFI == "" {
		return apperrors.Validation("note cfi is required")
	}

	if _, err := s.catalog.GetBook(ctx, note.BookID); err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.logger.Debug("saving note for missing book", "book_id", note.BookID)
	}

	if note.ID == "" {
		noteID, err := id.Generate("note")
		if err != nil {
			return apperrors.ErrInternal.WithCause(err)
		}
		note.ID = noteID
		note.CreatedAt = time.Now()
	} else {
		existing, err := s.store.Notes.Get(ctx, note.ID)
		switch {
		case err == nil:
			note.BookID = existing.BookID
			note.CFI = existing.CFI
			note.Text = existing.Text
			note.CreatedAt = existing.CreatedAt
		case apperrors.Is(err, apperrors.ErrNotFound):
			// Client-chosen ID for a note we have never seen.
			note.CreatedAt = time.Now()
		default:
			return err
		}
	}

	if err := s.store.Notes.Put(ctx, note.ID, note); err != nil {
		return err
	}

	s.hook.NoteSaved(note)

	s.logger.Debug("note saved", "note_id", note.ID, "book_id", note.BookID)
	return nil
}

// DeleteNote removes a note. Idempotent.
func (s *AnnotationService) DeleteNote(ctx context.Context, noteID string) error {
	return s.store.Notes.Delete(ctx, noteID)
}

// NotesForBook returns all notes anchored in the given book.
func (s *AnnotationService) NotesForBook(ctx context.Context, bookID string) ([]*domain.Note, error) {
	return s.store.Notes.ListByIndex(ctx, "book", bookID)
}

// SearchNotes returns notes whose excerpt or annotation contains query,
// case-insensitively, joined with their books. Notes whose book no
// longer exists come back with a nil Book; callers hide actions that
// need one (like jumping into the text).
func (s *AnnotationService) SearchNotes(ctx context.Context, query string) ([]domain.NoteMatch, error) {
	if query == "" {
		return nil, nil
	}

	booksByID := make(map[string]*domain.Book)
	for _, b := range s.catalog.ListBooks(ctx) {
		booksByID[b.ID] = b
	}

	var matches []domain.NoteMatch
	for note, err := range s.store.Notes.List(ctx) {
		if err != nil {
			return nil, err
		}
		if !note.Matches(query) {
			continue
		}
		matches = append(matches, domain.NoteMatch{
			Note: note,
			Book: booksByID[note.BookID],
		})
	}

	return matches, nil
}
