// Package notesync pushes saved notes to an external webhook.
//
// The dispatch is one-way and best-effort: there is no return channel
// into the save path, and a failed delivery is logged and dropped. A
// caller must never be able to observe whether the hook succeeded.
package notesync

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"time"

	"github.com/readleafapp/readleaf-server/internal/domain"
)

// Hook receives saved notes. Dispatch must not block or fail the caller.
type Hook interface {
	NoteSaved(note *domain.Note)
}

// NoopHook discards notes. Used when no webhook is configured and in tests.
type NoopHook struct{}

// NoteSaved implements Hook as a no-op.
func (NoopHook) NoteSaved(*domain.Note) {}

// WebhookHook POSTs each saved note to a configured URL.
type WebhookHook struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewWebhookHook creates a webhook dispatcher.
func NewWebhookHook(url string, timeout time.Duration, logger *slog.Logger) *WebhookHook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookHook{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// NoteSaved implements Hook. The delivery runs in its own goroutine
// with its own deadline; errors are logged at debug level and swallowed.
func (h *WebhookHook) NoteSaved(note *domain.Note) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		if err := h.deliver(ctx, note); err != nil {
			h.logger.Debug("note sync delivery failed",
				"note_id", note.ID,
				"error", err)
		}
	}()
}

func (h *WebhookHook) deliver(ctx context.Context, note *domain.Note) error {
	payload, err := json.Marshal(note)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	h.logger.Debug("note synced", "note_id", note.ID, "status", resp.StatusCode)
	return nil
}
