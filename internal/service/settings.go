package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/readleafapp/readleaf-server/internal/domain"
	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
	"github.com/readleafapp/readleaf-server/internal/store"
)

// SettingsService manages the singleton display preferences.
type SettingsService struct {
	store  *store.Store
	logger *slog.Logger

	// onChange is notified after every successful update so an active
	// reading session can re-apply theme and font without restarting.
	onChange func(*domain.UserSettings)
}

// NewSettingsService creates a settings service.
func NewSettingsService(st *store.Store, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		store:  st,
		logger: logger,
	}
}

// OnChange registers a callback invoked after each settings update.
// Set once during wiring; not safe to call concurrently with Update.
func (s *SettingsService) OnChange(fn func(*domain.UserSettings)) {
	s.onChange = fn
}

// Get returns the current settings. A store failure degrades to
// defaults rather than surfacing an error to presentation.
func (s *SettingsService) Get(ctx context.Context) *domain.UserSettings {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		s.logger.Warn("settings read failed, using defaults", "error", err)
		return domain.DefaultUserSettings()
	}
	return settings
}

// Update overwrites the settings wholesale after validating them.
func (s *SettingsService) Update(ctx context.Context, settings *domain.UserSettings) (*domain.UserSettings, error) {
	if !settings.Theme.Valid() {
		return nil, apperrors.Validationf("invalid theme %q", settings.Theme)
	}

	settings.ClampFontSize()
	settings.UpdatedAt = time.Now()

	if err := s.store.PutSettings(ctx, settings); err != nil {
		return nil, err
	}

	if s.onChange != nil {
		s.onChange(settings)
	}

	s.logger.Info("settings updated",
		"theme", settings.Theme,
		"font_size", settings.FontSize,
		"font_family", settings.FontFamily)

	return settings, nil
}

// StepFontSize adjusts the font size by delta percentage points,
// clamped to the allowed range: 100+10 gives 110, 175+10 gives 180.
func (s *SettingsService) StepFontSize(ctx context.Context, delta int) (*domain.UserSettings, error) {
	settings := s.Get(ctx)
	settings.FontSize = domain.ClampFontSize(settings.FontSize + delta)
	return s.Update(ctx, settings)
}
