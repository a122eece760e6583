package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"back_scan/internal/models"
	"back_scan/internal/services"
)

// DocumentHandler manages scanned documents, their pages and folders
type DocumentHandler struct {
	documents *services.DocumentService
}

func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

type addPagesRequest struct {
	Pages []models.PageUpload `json:"pages"`
}

func writeDocumentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidName),
		errors.Is(err, services.ErrInvalidPage),
		errors.Is(err, services.ErrInvalidPageOrder):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: Document request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ListFolders returns the caller's folders
func (h *DocumentHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	folders, err := h.documents.ListFolders(userID)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"folders": folders,
	})
}

func (h *DocumentHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateFolderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	folder, err := h.documents.CreateFolder(userID, req.Name)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Folder created",
		"folder":  folder,
	})
}

func (h *DocumentHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	folderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CreateFolderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	folder, err := h.documents.RenameFolder(userID, folderID, req.Name)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"folder":  folder,
	})
}

// DeleteFolder deletes a folder; its documents move to the root
func (h *DocumentHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	folderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.documents.DeleteFolder(userID, folderID); err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Folder deleted",
	})
}

// ListDocuments filters by ?folder_id=N, or ?folder_id=root for documents outside any folder
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var filter services.DocumentFilter
	switch raw := r.URL.Query().Get("folder_id"); raw {
	case "":
	case "root":
		filter.RootOnly = true
	default:
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid folder_id")
			return
		}
		folderID := uint(id)
		filter.FolderID = &folderID
	}

	docs, err := h.documents.ListDocuments(userID, filter)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"documents": docs,
	})
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	documentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.documents.GetDocument(userID, documentID)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"document": doc,
	})
}

func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	doc, err := h.documents.CreateDocument(r.Context(), userID, req)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Document created",
		"document": doc,
	})
}

// UpdateDocument renames a document or moves it between folders
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	documentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	doc, err := h.documents.UpdateDocument(userID, documentID, req)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"document": doc,
	})
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	documentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.documents.DeleteDocument(r.Context(), userID, documentID); err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Document deleted",
	})
}

// AddPages appends pages after the existing ones
func (h *DocumentHandler) AddPages(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	documentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addPagesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Pages) == 0 {
		writeError(w, http.StatusBadRequest, "At least one page is required")
		return
	}
	doc, err := h.documents.AddPages(r.Context(), userID, documentID, req.Pages)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"document": doc,
	})
}

// GetPage streams the stored page image
func (h *DocumentHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	documentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	pageID, ok := pathID(w, r, "page")
	if !ok {
		return
	}

	data, contentType, err := h.documents.PageImage(r.Context(), userID, documentID, pageID)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("WARNING: Failed to write page %d: %v", pageID, err)
	}
}

// RemovePage deletes a page and closes the gap in positions
func (h *DocumentHandler) RemovePage(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	documentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	pageID, ok := pathID(w, r, "page")
	if !ok {
		return
	}

	doc, err := h.documents.RemovePage(r.Context(), userID, documentID, pageID)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"document": doc,
	})
}

func (h *DocumentHandler) ReorderPages(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	documentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.ReorderPagesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	doc, err := h.documents.ReorderPages(userID, documentID, req.PageIDs)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"document": doc,
	})
}
