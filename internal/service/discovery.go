package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/readleafapp/readleaf-server/internal/discovery/haodoo"
	"github.com/readleafapp/readleaf-server/internal/domain"
	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
)

// Catalog is the upstream discovery client contract. Satisfied by
// *haodoo.Client; tests substitute a counting fake.
type Catalog interface {
	Search(ctx context.Context, keyword string) ([]haodoo.Result, error)
	FetchBook(ctx context.Context, downloadURL string) ([]byte, error)
}

// externalSourceLabel names the upstream catalog in results.
const externalSourceLabel = "haodoo"

// DiscoveryService adapts the upstream catalog client to the rest of
// the application: it normalizes results, converts transport failures
// into domain errors, and serializes downloads.
type DiscoveryService struct {
	upstream      Catalog
	library       *CatalogService
	logger        *slog.Logger
	searchTimeout time.Duration

	// downloading is the global download flag: one download at a time,
	// set and cleared on every exit path.
	downloading atomic.Bool
}

// NewDiscoveryService creates a discovery adapter.
func NewDiscoveryService(upstream Catalog, library *CatalogService, searchTimeout time.Duration, logger *slog.Logger) *DiscoveryService {
	if searchTimeout <= 0 {
		searchTimeout = 5 * time.Second
	}
	return &DiscoveryService{
		upstream:      upstream,
		library:       library,
		logger:        logger,
		searchTimeout: searchTimeout,
	}
}

// Search queries the external catalog with an enforced deadline.
//
// Failures never reach the caller raw: a timeout becomes TIMEOUT and
// anything else becomes NETWORK_UNAVAILABLE. No placeholder results are
// fabricated for the disconnected case; the caller gets an explicit
// error and shows an "unavailable" state.
func (s *DiscoveryService) Search(ctx context.Context, keyword string) ([]domain.ExternalBook, error) {
	if keyword == "" {
		return nil, apperrors.Validation("keyword is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()

	results, err := s.upstream.Search(ctx, keyword)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			s.logger.Warn("discovery search timed out", "keyword", keyword)
			return nil, apperrors.Timeout("catalog search timed out").WithCause(err)
		}
		s.logger.Warn("discovery search failed", "keyword", keyword, "error", err)
		return nil, apperrors.NetworkUnavailable("catalog is unreachable").WithCause(err)
	}

	books := make([]domain.ExternalBook, 0, len(results))
	for _, r := range results {
		books = append(books, domain.ExternalBook{
			ID:          r.ID,
			Title:       r.Title,
			Author:      r.Author,
			Source:      externalSourceLabel,
			DownloadURL: r.DownloadURL,
		})
	}
	return books, nil
}

// ResolveDownload fetches the raw bytes behind an external book.
//
// Sentinel URLs ("#", empty) are rejected locally with INVALID_SOURCE
// before any network call, so the UI can explain instead of failing
// generically. Real URLs are fetched exactly once: no retry, no cache,
// no deduplication of concurrent identical requests.
func (s *DiscoveryService) ResolveDownload(ctx context.Context, book *domain.ExternalBook) ([]byte, error) {
	if !book.Downloadable() {
		return nil, apperrors.InvalidSource("this entry has no real download source")
	}

	data, err := s.upstream.FetchBook(ctx, book.DownloadURL)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.Timeout("download timed out").WithCause(err)
		}
		return nil, apperrors.NetworkUnavailable("download failed").WithCause(err)
	}
	return data, nil
}

// Download resolves an external book and adds it to the library.
//
// Downloads run exclusively: a second download attempt while one is in
// flight is rejected with CONFLICT. On any failure no partial Book
// record is created.
func (s *DiscoveryService) Download(ctx context.Context, book *domain.ExternalBook) (*domain.Book, error) {
	if !s.downloading.CompareAndSwap(false, true) {
		return nil, apperrors.Conflict("another download is already in progress")
	}
	defer s.downloading.Store(false)

	data, err := s.ResolveDownload(ctx, book)
	if err != nil {
		return nil, err
	}

	added, err := s.library.AddDownloadedBook(ctx, data, book.Title, book.Author, domain.SourceHaodoo)
	if err != nil {
		return nil, err
	}

	s.logger.Info("external book downloaded",
		"external_id", book.ID,
		"book_id", added.ID,
		"size", len(data))

	return added, nil
}

// stalenessGuard tracks the most recent query so that a superseded
// search's results can be discarded instead of flickering in after a
// newer query's.
type stalenessGuard struct {
	mu     sync.Mutex
	latest string
}

func (g *stalenessGuard) begin(query string) {
	g.mu.Lock()
	g.latest = query
	g.mu.Unlock()
}

func (g *stalenessGuard) stale(query string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest != query
}
