package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/readleafapp/readleaf-server/internal/domain"
	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
)

// SearchResults carries a combined external-catalog and local-note
// search, tagged with the query that produced it.
type SearchResults struct {
	Query    string                `json:"query"`
	External []domain.ExternalBook `json:"external"`
	Notes    []domain.NoteMatch    `json:"notes"`
	// Unavailable is set when the external catalog could not be
	// reached. The external list is then empty, not fabricated.
	Unavailable bool `json:"unavailable,omitempty"`
	// Stale marks results for a query that has since been superseded
	// by a newer one; callers discard them.
	Stale bool `json:"-"`
}

// SearchService runs the unified search: one query fans out to the
// external catalog and the local notes concurrently, and the two result
// sets are joined before either is returned.
type SearchService struct {
	discovery   *DiscoveryService
	annotations *AnnotationService
	logger      *slog.Logger
	guard       stalenessGuard
}

// NewSearchService creates the unified search service.
func NewSearchService(discovery *DiscoveryService, annotations *AnnotationService, logger *slog.Logger) *SearchService {
	return &SearchService{
		discovery:   discovery,
		annotations: annotations,
		logger:      logger,
	}
}

// Run executes both searches for query. Both legs are issued before
// either is awaited. A leg's network failure degrades that leg (empty
// external results plus the Unavailable flag) rather than failing the
// whole search; a storage failure on the local leg is a real error.
//
// When a newer query starts while this one is in flight, the returned
// results are marked Stale and the caller throws them away: results
// are keyed by the query string that produced them, so ordering never
// flickers.
func (s *SearchService) Run(ctx context.Context, query string) (*SearchResults, error) {
	if query == "" {
		return nil, apperrors.Validation("query is required")
	}

	s.guard.begin(query)

	results := &SearchResults{Query: query}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		external, err := s.discovery.Search(gctx, query)
		if err != nil {
			// Degraded leg: explicit unavailable, empty list.
			results.Unavailable = true
			return nil
		}
		results.External = external
		return nil
	})

	g.Go(func() error {
		notes, err := s.annotations.SearchNotes(gctx, query)
		if err != nil {
			return err
		}
		results.Notes = notes
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.guard.stale(query) {
		s.logger.Debug("discarding superseded search results", "query", query)
		results.Stale = true
	}

	return results, nil
}
