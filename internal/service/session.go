package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/readleafapp/readleaf-server/internal/domain"
	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
	"github.com/readleafapp/readleaf-server/internal/render"
)

// SessionService is the reading session controller. It owns the single
// active session and its state machine:
//
//	Closed -> Opening -> Ready -> Closed
//
// with Error terminal from Opening. Close is legal from every state.
type SessionService struct {
	catalog  *CatalogService
	settings *SettingsService
	engine   render.Engine
	logger   *slog.Logger

	mu      sync.Mutex
	session *domain.ReadingSession
	view    render.View
}

// NewSessionService creates the session controller.
func NewSessionService(catalog *CatalogService, settings *SettingsService, engine render.Engine, logger *slog.Logger) *SessionService {
	s := &SessionService{
		catalog:  catalog,
		settings: settings,
		engine:   engine,
		logger:   logger,
	}
	// Live settings changes reach the open view without a restart.
	settings.OnChange(s.ApplySettings)
	return s
}

// Current returns a snapshot of the active session, or a Closed one
// when nothing is open.
func (s *SessionService) Current() domain.ReadingSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.ReadingSession{State: domain.SessionClosed}
	}
	return *s.session
}

// Open starts a reading session for the given book. Any prior session
// is closed first: there is never more than one open at a time.
//
// A book with no stored content moves the session straight to Error
// without ever invoking the rendering engine.
func (s *SessionService) Open(ctx context.Context, bookID string) (domain.ReadingSession, error) {
	book, err := s.catalog.GetBook(ctx, bookID)
	if err != nil {
		return domain.ReadingSession{State: domain.SessionClosed}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()

	session := &domain.ReadingSession{
		ID:       uuid.NewString(),
		BookID:   book.ID,
		State:    domain.SessionOpening,
		OpenedAt: time.Now(),
	}
	s.session = session

	data, err := s.catalog.GetBookData(ctx, bookID)
	if err != nil || len(data) == 0 {
		cause := err
		if cause == nil {
			cause = apperrors.ContentInvalid("book has no content")
		}
		return s.failLocked(cause)
	}

	view, err := s.engine.Render(ctx, data)
	if err != nil {
		return s.failLocked(err)
	}

	// Apply current display preferences before the session is usable.
	prefs := s.settings.Get(ctx)
	view.ApplyTheme(prefs.Theme)
	view.ApplyFontScale(prefs.FontSize)

	s.view = view
	session.State = domain.SessionReady

	s.logger.Info("reading session opened",
		"session_id", session.ID,
		"book_id", book.ID,
		"title", book.Title)

	return *session, nil
}

// failLocked moves the session to the terminal Error state with a
// user-facing message. The session stays addressable so Close works.
func (s *SessionService) failLocked(cause error) (domain.ReadingSession, error) {
	s.session.State = domain.SessionError

	var domainErr *apperrors.Error
	if apperrors.As(cause, &domainErr) {
		s.session.Message = domainErr.Message
	} else {
		s.session.Message = "could not open this book"
		cause = apperrors.ContentInvalid("could not open this book").WithCause(cause)
	}

	s.logger.Warn("reading session failed to open",
		"session_id", s.session.ID,
		"book_id", s.session.BookID,
		"error", cause)

	return *s.session, cause
}

// UpdatePosition records the reading position. Positions are only
// tracked while Ready; they are not persisted across sessions (there
// is no resume-where-you-left-off).
func (s *SessionService) UpdatePosition(locator string) (domain.ReadingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.State != domain.SessionReady {
		return s.snapshotLocked(), apperrors.Conflict("no ready reading session")
	}

	s.session.Locator = locator
	s.session.Progress = s.view.Progress(locator)
	return *s.session, nil
}

// ApplySettings pushes theme and font scale onto the active view, if
// any, without restarting the session.
func (s *SessionService) ApplySettings(settings *domain.UserSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == nil {
		return
	}
	s.view.ApplyTheme(settings.Theme)
	s.view.ApplyFontScale(settings.FontSize)
}

// ProposeAnnotation turns a text selection in the rendered view into a
// candidate note draft. Nothing is saved here; the caller confirms and
// calls the annotation service explicitly.
func (s *SessionService) ProposeAnnotation(cfi, excerpt string) (*domain.AnnotationDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.State != domain.SessionReady {
		return nil, apperrors.Conflict("no ready reading session")
	}
	if cfi == "" {
		return nil, apperrors.Validation("selection cfi is required")
	}

	return &domain.AnnotationDraft{
		BookID: s.session.BookID,
		CFI:    cfi,
		Text:   excerpt,
	}, nil
}

// Close releases the rendering view and returns to the catalog.
// Unconditional: legal from any state, idempotent.
func (s *SessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *SessionService) closeLocked() {
	if s.view != nil {
		s.view.Close()
		s.view = nil
	}
	if s.session != nil {
		s.logger.Debug("reading session closed",
			"session_id", s.session.ID,
			"book_id", s.session.BookID)
		s.session = nil
	}
}

func (s *SessionService) snapshotLocked() domain.ReadingSession {
	if s.session == nil {
		return domain.ReadingSession{State: domain.SessionClosed}
	}
	return *s.session
}
