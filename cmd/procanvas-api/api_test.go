package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procanvas/procanvas/pkg/auth"
	"github.com/procanvas/procanvas/pkg/persistence/file"
)

func setupTestApp(tempDir string) *fiber.App {
	persistence := file.NewPersistence(tempDir)
	sessions := auth.NewStaticSessionStore()

	api := NewAPI(
		slog.Default(),
		persistence,
		sessions,
		nil,
		nil,
	)

	return api.App()
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ProCanvas API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_WorkflowsRequireAuth(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/workflows", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CORS_Headers(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodOptions, "/workflows", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
