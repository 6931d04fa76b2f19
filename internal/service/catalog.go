// Package service contains the business services of the ReadLeaf server.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/readleafapp/readleaf-server/internal/domain"
	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
	"github.com/readleafapp/readleaf-server/internal/id"
	"github.com/readleafapp/readleaf-server/internal/store"
)

// CatalogService manages the library of owned books.
//
// It keeps an in-memory view of the catalog that is rebuilt by a full
// re-read after every mutation. The re-read is O(n) per change, which
// is fine for a personal library of at most a few hundred books, and it
// guarantees the cached list never diverges from the store.
type CatalogService struct {
	store  *store.Store
	logger *slog.Logger

	mu    sync.RWMutex
	books []*domain.Book
}

// NewCatalogService creates a catalog service and hydrates its cache.
// A store failure during hydration degrades to an empty catalog.
func NewCatalogService(st *store.Store, logger *slog.Logger) *CatalogService {
	s := &CatalogService{
		store:  st,
		logger: logger,
	}
	if err := s.refresh(context.Background()); err != nil {
		logger.Warn("catalog hydration failed, starting empty", "error", err)
	}
	return s
}

// ListBooks returns the current catalog. Order is unspecified; callers
// sort for presentation.
func (s *CatalogService) ListBooks(_ context.Context) []*domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Book, len(s.books))
	copy(out, s.books)
	return out
}

// GetBook returns one book's metadata.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundf("book %s not found", bookID)
		}
		return nil, err
	}
	return book, nil
}

// GetBookData returns a book's raw content bytes.
func (s *CatalogService) GetBookData(ctx context.Context, bookID string) ([]byte, error) {
	data, err := s.store.GetBlob(ctx, bookID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundf("book %s has no content", bookID)
		}
		return nil, err
	}
	return data, nil
}

// ImportBook adds a book from raw EPUB bytes. The bytes are stored
// unvalidated; malformed content is only discovered when a reading
// session hands them to the rendering engine.
func (s *CatalogService) ImportBook(ctx context.Context, raw []byte, displayName string) (*domain.Book, error) {
	return s.addBook(ctx, raw, displayName, "", domain.SourceLocal)
}

// AddDownloadedBook adds a book fetched from an external catalog.
func (s *CatalogService) AddDownloadedBook(ctx context.Context, raw []byte, title, author string, source domain.BookSource) (*domain.Book, error) {
	return s.addBook(ctx, raw, title, author, source)
}

func (s *CatalogService) addBook(ctx context.Context, raw []byte, title, author string, source domain.BookSource) (*domain.Book, error) {
	if len(raw) == 0 {
		return nil, apperrors.Validation("book content is empty")
	}
	if title == "" {
		return nil, apperrors.Validation("book title is required")
	}

	bookID, err := id.Generate("bk")
	if err != nil {
		return nil, apperrors.ErrInternal.WithCause(err)
	}

	book := domain.NewBook(bookID, title, author, source, int64(len(raw)))

	if err := s.store.PutBlob(ctx, bookID, raw); err != nil {
		return nil, err
	}
	if err := s.store.Books.Put(ctx, bookID, book); err != nil {
		// Don't leave an orphaned blob behind.
		_ = s.store.DeleteBlob(ctx, bookID)
		return nil, err
	}

	if err := s.refresh(ctx); err != nil {
		s.logger.Warn("catalog refresh failed after import", "book_id", bookID, "error", err)
	}

	s.logger.Info("book added to catalog",
		"book_id", bookID,
		"title", title,
		"source", source,
		"size", len(raw))

	return book, nil
}

// RemoveBook deletes a book and its content. Notes referencing the
// book are left in place; note search tolerates the dangling reference.
func (s *CatalogService) RemoveBook(ctx context.Context, bookID string) error {
	if err := s.store.Books.Delete(ctx, bookID); err != nil {
		return err
	}
	if err := s.store.DeleteBlob(ctx, bookID); err != nil {
		return err
	}

	if err := s.refresh(ctx); err != nil {
		s.logger.Warn("catalog refresh failed after remove", "book_id", bookID, "error", err)
	}

	s.logger.Info("book removed", "book_id", bookID)
	return nil
}

// refresh rebuilds the in-memory list from the store.
func (s *CatalogService) refresh(ctx context.Context) error {
	books, err := s.store.Books.All(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
	return nil
}
