package api

import (
	"encoding/json/v2"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readleafapp/readleaf-server/internal/domain"
)

func decodeSession(t *testing.T, body []byte) domain.ReadingSession {
	t.Helper()
	var result struct {
		Data domain.ReadingSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	return result.Data
}

func importBook(t *testing.T, server *Server) domain.Book {
	t.Helper()

	rec := uploadEpub(t, server, "session-book.epub", epubUpload())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data domain.Book `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created.Data
}

func TestSession_Get_InitiallyClosed(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	rec := doRequest(server, http.MethodGet, "/api/v1/session/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	session := decodeSession(t, rec.Body.Bytes())
	assert.Equal(t, domain.SessionClosed, session.State)
}

func TestSession_OpenBook(t *testing.T) {
	server, deps, cleanup := setupTestServer(t)
	defer cleanup()

	book := importBook(t, server)

	rec := doRequest(server, http.MethodPost, "/api/v1/books/"+book.ID+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	session := decodeSession(t, rec.Body.Bytes())
	assert.Equal(t, domain.SessionReady, session.State)
	assert.Equal(t, book.ID, session.BookID)
	assert.Equal(t, 1, deps.engine.RenderCalls)
}

func TestSession_Open_UnknownBook(t *testing.T) {
	server, deps, cleanup := setupTestServer(t)
	defer cleanup()

	rec := doRequest(server, http.MethodPost, "/api/v1/books/bk-nope/open", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, deps.engine.RenderCalls)
}

func TestSession_UpdatePosition(t *testing.T) {
	server, deps, cleanup := setupTestServer(t)
	defer cleanup()

	book := importBook(t, server)
	rec := doRequest(server, http.MethodPost, "/api/v1/books/"+book.ID+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	deps.engine.LastView.ProgressMap = map[string]float64{"epubcfi(/6/8)": 0.4}

	rec = doRequest(server, http.MethodPost, "/api/v1/session/position",
		strings.NewReader(`{"locator":"epubcfi(/6/8)"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	session := decodeSession(t, rec.Body.Bytes())
	assert.Equal(t, "epubcfi(/6/8)", session.Locator)
	assert.Equal(t, 0.4, session.Progress)
}

func TestSession_UpdatePosition_NoSession(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	rec := doRequest(server, http.MethodPost, "/api/v1/session/position",
		strings.NewReader(`{"locator":"epubcfi(/6/8)"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSession_Selection(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	book := importBook(t, server)
	rec := doRequest(server, http.MethodPost, "/api/v1/books/"+book.ID+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(server, http.MethodPost, "/api/v1/session/selection",
		strings.NewReader(`{"cfi":"epubcfi(/6/10)","excerpt":"selected words"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data domain.AnnotationDraft `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, book.ID, result.Data.BookID)
	assert.Equal(t, "selected words", result.Data.Text)
}

func TestSession_Close(t *testing.T) {
	server, deps, cleanup := setupTestServer(t)
	defer cleanup()

	book := importBook(t, server)
	rec := doRequest(server, http.MethodPost, "/api/v1/books/"+book.ID+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(server, http.MethodPost, "/api/v1/session/close", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	session := decodeSession(t, rec.Body.Bytes())
	assert.Equal(t, domain.SessionClosed, session.State)
	assert.Equal(t, 1, deps.engine.LastView.CloseCalls)

	// Close on an already-closed session is still OK.
	rec = doRequest(server, http.MethodPost, "/api/v1/session/close", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
