package notesync

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readleafapp/readleaf-server/internal/domain"
)

func TestNoopHook_NoteSaved(t *testing.T) {
	var hook Hook = NoopHook{}

	// Must tolerate nil notes; nothing to observe.
	hook.NoteSaved(nil)
	hook.NoteSaved(&domain.Note{ID: "note-abc"})
}

func TestWebhookHook_DeliversNote(t *testing.T) {
	received := make(chan domain.Note, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var note domain.Note
		require.NoError(t, json.Unmarshal(body, &note))
		received <- note
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hook := NewWebhookHook(srv.URL, 5*time.Second, slog.New(slog.DiscardHandler))
	hook.NoteSaved(&domain.Note{
		ID:     "note-abc",
		BookID: "bk-xyz",
		CFI:    "epubcfi(/6/4!/4/2)",
		Text:   "床前明月光",
	})

	select {
	case note := <-received:
		assert.Equal(t, "note-abc", note.ID)
		assert.Equal(t, "bk-xyz", note.BookID)
		assert.Equal(t, "床前明月光", note.Text)
	case <-time.After(3 * time.Second):
		t.Fatal("webhook never received the note")
	}
}

func TestWebhookHook_FailureIsSwallowed(t *testing.T) {
	// Unroutable port; delivery fails but the caller never sees it.
	hook := NewWebhookHook("http://127.0.0.1:1", 100*time.Millisecond, slog.New(slog.DiscardHandler))

	hook.NoteSaved(&domain.Note{ID: "note-doomed"})

	// Give the background goroutine time to fail and log.
	time.Sleep(300 * time.Millisecond)
}

func TestNewWebhookHook_DefaultTimeout(t *testing.T) {
	hook := NewWebhookHook("http://example.com", 0, slog.New(slog.DiscardHandler))
	assert.Equal(t, 10*time.Second, hook.timeout)
}
