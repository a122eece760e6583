package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"back_scan/internal/config"
	"back_scan/internal/database"
	"back_scan/internal/history"
	"back_scan/internal/kvstore"
	"back_scan/internal/models"
	"back_scan/internal/pagestore"
	"back_scan/internal/render"
	"back_scan/internal/services"
	"back_scan/internal/validation"

	"github.com/stretchr/testify/require"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake barcode")

type testEnv struct {
	server      *httptest.Server
	histories   *history.Registry
	barcodeDown atomic.Bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{}

	barcodeService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env.barcodeDown.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(fakePNG)
	}))
	t.Cleanup(barcodeService.Close)

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	persister, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	syncer := history.NewSyncer(persister)
	t.Cleanup(syncer.Close)
	env.histories, err = history.NewRegistry(persister, syncer, 16)
	require.NoError(t, err)

	presets := render.DefaultPresets()
	barcodes, err := render.NewBarcodeClient(config.RenderConfig{BarcodeServiceURL: barcodeService.URL}, barcodeService.Client(), presets)
	require.NoError(t, err)
	renderer := render.New(render.NewQRRenderer(presets), barcodes)

	pages, err := pagestore.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	validator, err := validation.New()
	require.NoError(t, err)

	auth := services.NewAuthService(db, "test-secret", time.Hour)
	hub := services.NewScanHub()
	origins := []string{"https://app.example.com"}
	router := Router{
		Users:     NewUserHandler(auth),
		Codes:     NewCodeHandler(services.NewGenerationService(validator), renderer, env.histories),
		Scans:     NewScanHandler(services.NewScanService(hub), hub, env.histories, origins),
		History:   NewHistoryHandler(env.histories),
		Documents: NewDocumentHandler(services.NewDocumentService(db, pages)),
		Health:    NewHealthHandler(db),
		Auth:      AuthMiddleware(auth),
	}

	env.server = httptest.NewServer(CORSMiddleware(origins)(router.Handler()))
	t.Cleanup(env.server.Close)
	return env
}

// do sends body as JSON and decodes a JSON response into a map
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	resp := env.raw(t, method, path, token, body)
	defer resp.Body.Close()

	var out map[string]interface{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (env *testEnv) raw(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, env.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

// login registers username and returns a token for it
func (env *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	creds := models.UserRegister{Username: username, Password: "correct horse"}
	status, _ := env.do(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, status)

	status, body := env.do(t, http.MethodPost, "/api/auth/login", "", models.UserLogin(creds))
	require.Equal(t, http.StatusOK, status)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func (env *testEnv) historyCount(t *testing.T, token string) int {
	t.Helper()
	status, body := env.do(t, http.MethodGet, "/api/history", token, nil)
	require.Equal(t, http.StatusOK, status)
	return int(body["count"].(float64))
}
