package handlers

import (
	"log"
	"net/http"

	"back_scan/internal/history"
	"back_scan/internal/models"
)

// HistoryHandler exposes the caller's scan history
type HistoryHandler struct {
	histories *history.Registry
}

func NewHistoryHandler(histories *history.Registry) *HistoryHandler {
	return &HistoryHandler{histories: histories}
}

// List returns the history, most recent first
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	events := h.histories.Store(r.Context(), userID).Events()
	if events == nil {
		events = []models.ScanEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  events,
		"count":   len(events),
	})
}

// Clear empties the history. The current selection is kept.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	store, release := h.histories.Acquire(r.Context(), userID)
	defer release()
	store.Clear()
	log.Printf("DEBUG: Cleared history for user %d", userID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "History cleared",
	})
}

// Current returns the current selection, or a null event when there is none
func (h *HistoryHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var event interface{}
	if current, found := h.histories.Store(r.Context(), userID).Current(); found {
		event = current
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"event":   event,
	})
}
