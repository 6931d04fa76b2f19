package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readleafapp/readleaf-server/internal/discovery/haodoo"
	"github.com/readleafapp/readleaf-server/internal/render"
	"github.com/readleafapp/readleaf-server/internal/service"
	"github.com/readleafapp/readleaf-server/internal/store"
)

// testDeps bundles the services behind a test server for direct seeding.
type testDeps struct {
	store    *store.Store
	catalog  *service.CatalogService
	upstream *stubUpstream
	engine   *render.FakeEngine
}

// stubUpstream is a programmable discovery backend.
type stubUpstream struct {
	searchResult []haodoo.Result
	searchErr    error
	fetchResult  []byte
	fetchErr     error
}

func (s *stubUpstream) Search(context.Context, string) ([]haodoo.Result, error) {
	return s.searchResult, s.searchErr
}

func (s *stubUpstream) FetchBook(context.Context, string) ([]byte, error) {
	return s.fetchResult, s.fetchErr
}

// setupTestServer creates a test server with all dependencies.
func setupTestServer(t *testing.T) (*Server, *testDeps, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "readleaf-api-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(dbPath, logger)
	require.NoError(t, err)

	upstream := &stubUpstream{}
	engine := &render.FakeEngine{}

	catalog := service.NewCatalogService(s, logger)
	annotations := service.NewAnnotationService(s, catalog, nil, logger)
	settings := service.NewSettingsService(s, logger)
	session := service.NewSessionService(catalog, settings, engine, logger)
	discovery := service.NewDiscoveryService(upstream, catalog, time.Second, logger)
	search := service.NewSearchService(discovery, annotations, logger)

	server := NewServer(catalog, annotations, settings, discovery, search, session, []string{"*"}, logger)

	deps := &testDeps{
		store:    s,
		catalog:  catalog,
		upstream: upstream,
		engine:   engine,
	}

	cleanup := func() {
		_ = s.Close()            //nolint:errcheck // Test cleanup
		_ = os.RemoveAll(tmpDir) //nolint:errcheck // Test cleanup
	}

	return server, deps, cleanup
}

// doRequest executes a request against the server's router.
func doRequest(server *Server, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

// uploadEpub performs a multipart upload of fake EPUB content.
func uploadEpub(t *testing.T, server *Server, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}
