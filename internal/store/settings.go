package store

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/readleafapp/readleaf-server/internal/domain"
	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
)

// GetSettings retrieves the singleton user settings.
// Returns defaults when none have been saved yet.
func (s *Store) GetSettings(ctx context.Context) (*domain.UserSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.get([]byte(settingsKey))
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return domain.DefaultUserSettings(), nil
	}
	if err != nil {
		return nil, err
	}

	var settings domain.UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, storeErr(fmt.Errorf("unmarshal settings: %w", err))
	}
	return &settings, nil
}

// PutSettings overwrites the singleton user settings wholesale.
// There is no history; the previous record is gone after this returns.
func (s *Store) PutSettings(ctx context.Context, settings *domain.UserSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.set([]byte(settingsKey), data)
}
