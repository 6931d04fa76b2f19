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

func getSettings(t *testing.T, server *Server) domain.UserSettings {
	t.Helper()

	rec := doRequest(server, http.MethodGet, "/api/v1/settings/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data domain.UserSettings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result.Data
}

func TestSettings_Get_Defaults(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	settings := getSettings(t, server)
	assert.Equal(t, domain.ThemeLight, settings.Theme)
	assert.Equal(t, 100, settings.FontSize)
}

func TestSettings_Update(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	body := `{"theme":"dark","font_size":125}`
	rec := doRequest(server, http.MethodPut, "/api/v1/settings/", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	settings := getSettings(t, server)
	assert.Equal(t, domain.ThemeDark, settings.Theme)
	assert.Equal(t, 125, settings.FontSize)
}

func TestSettings_Update_InvalidTheme(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	body := `{"theme":"sepia","font_size":100}`
	rec := doRequest(server, http.MethodPut, "/api/v1/settings/", strings.NewReader(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec.Body.Bytes())
	assert.Equal(t, "VALIDATION", envelope.Code)
}

func TestSettings_Update_ClampsFontSize(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	body := `{"theme":"parchment","font_size":900}`
	rec := doRequest(server, http.MethodPut, "/api/v1/settings/", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	settings := getSettings(t, server)
	assert.Equal(t, 180, settings.FontSize)
}

func TestSettings_StepFontSize(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	rec := doRequest(server, http.MethodPost, "/api/v1/settings/font-size", strings.NewReader(`{"delta":10}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data domain.UserSettings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 110, result.Data.FontSize)
}

func TestSettings_StepFontSize_ZeroDelta(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	rec := doRequest(server, http.MethodPost, "/api/v1/settings/font-size", strings.NewReader(`{"delta":0}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
