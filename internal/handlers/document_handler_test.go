package handlers

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jpegPage = map[string]interface{}{"content_type": "image/jpeg", "data": []byte("\xff\xd8\xff\xe0 first")}
	pngPage  = map[string]interface{}{"data": []byte("\x89PNG\r\n\x1a\n second")}
)

func idOf(t *testing.T, body map[string]interface{}, key string) uint {
	t.Helper()
	obj, ok := body[key].(map[string]interface{})
	require.True(t, ok, "missing %s", key)
	return uint(obj["id"].(float64))
}

func pagesOf(body map[string]interface{}) []uint {
	pages := body["document"].(map[string]interface{})["pages"].([]interface{})
	ids := make([]uint, len(pages))
	for i, p := range pages {
		ids[i] = uint(p.(map[string]interface{})["id"].(float64))
	}
	return ids
}

func TestDocumentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")

	status, body := env.do(t, http.MethodPost, "/api/folders", token, map[string]interface{}{"name": "Receipts"})
	require.Equal(t, http.StatusCreated, status)
	folderID := idOf(t, body, "folder")

	status, body = env.do(t, http.MethodPost, "/api/documents", token, map[string]interface{}{
		"name":      "March",
		"folder_id": folderID,
		"pages":     []interface{}{jpegPage, pngPage},
	})
	require.Equal(t, http.StatusCreated, status)
	docID := idOf(t, body, "document")
	pages := pagesOf(body)
	require.Len(t, pages, 2)

	resp := env.raw(t, http.MethodGet, fmt.Sprintf("/api/documents/%d/pages/%d", docID, pages[1]), token, nil)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, pngPage["data"], data)

	status, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/documents/%d/pages/order", docID), token, map[string]interface{}{
		"page_ids": []uint{pages[1], pages[0]},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint{pages[1], pages[0]}, pagesOf(body))

	status, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/documents/%d/pages/order", docID), token, map[string]interface{}{
		"page_ids": []uint{pages[1]},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, fmt.Sprintf("/api/documents/%d/pages", docID), token, map[string]interface{}{
		"pages": []interface{}{jpegPage},
	})
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, pagesOf(body), 3)

	status, body = env.do(t, http.MethodDelete, fmt.Sprintf("/api/documents/%d/pages/%d", docID, pages[1]), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, pagesOf(body), 2)

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/folders/%d", folderID), token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodGet, "/api/documents?folder_id=root", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["documents"].([]interface{}), 1)

	status, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/documents/%d", docID), token, map[string]interface{}{"name": "April"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "April", body["document"].(map[string]interface{})["name"])

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/documents/%d", docID), token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d", docID), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDocumentsAreScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")

	status, body := env.do(t, http.MethodPost, "/api/documents", alice, map[string]interface{}{
		"name":  "Private",
		"pages": []interface{}{jpegPage},
	})
	require.Equal(t, http.StatusCreated, status)
	docID := idOf(t, body, "document")
	pageID := pagesOf(body)[0]

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d", docID), bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d/pages/%d", docID, pageID), bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/documents/%d", docID), bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/api/documents", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["documents"])
}

func TestDocumentValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "alice")

	status, _ := env.do(t, http.MethodPost, "/api/folders", token, map[string]interface{}{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/documents", token, map[string]interface{}{
		"name":  "Bad page",
		"pages": []interface{}{map[string]interface{}{"data": []byte("plain text")}},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodGet, "/api/documents?folder_id=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/documents", token, map[string]interface{}{"name": "Lost", "folder_id": 999})
	assert.Equal(t, http.StatusNotFound, status)
}
