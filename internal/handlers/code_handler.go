package handlers

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"

	"back_scan/internal/history"
	"back_scan/internal/models"
	"back_scan/internal/render"
	"back_scan/internal/services"
	"back_scan/internal/validation"
)

// CodeHandler serves form validation, code generation and rendering
type CodeHandler struct {
	generation *services.GenerationService
	renderer   *render.Renderer
	histories  *history.Registry
}

func NewCodeHandler(generation *services.GenerationService, renderer *render.Renderer, histories *history.Registry) *CodeHandler {
	return &CodeHandler{generation: generation, renderer: renderer, histories: histories}
}

type validateRequest struct {
	Type   models.FormType `json:"type"`
	Fields map[string]any  `json:"fields"`
}

// generateRequest is a generator form plus an optional image format. Without
// a format only the payload is returned.
type generateRequest struct {
	models.GenerateRequest
	Format render.Format `json:"format,omitempty"`
}

// renderRequest renders either a recorded history event or an explicit payload
type renderRequest struct {
	EventID   string               `json:"event_id,omitempty"`
	Data      string               `json:"data,omitempty"`
	Symbology models.Symbology     `json:"symbology,omitempty"`
	Format    render.Format        `json:"format,omitempty"`
	Style     *models.StyleOptions `json:"style,omitempty"`
}

// Validate checks form fields without generating anything
func (h *CodeHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	errs := h.generation.Validate(req.Type, req.Fields)
	if errs == nil {
		errs = []validation.FieldError{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"valid":   len(errs) == 0,
		"errors":  errs,
	})
}

// Generate encodes a form into a payload and records it in the caller's history
func (h *CodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "Form type is required")
		return
	}

	store, release := h.histories.Acquire(r.Context(), userID)
	defer release()
	event, err := h.generation.Generate(store, req.GenerateRequest)
	if err != nil {
		var fieldErrs validation.Errors
		switch {
		case errors.As(err, &fieldErrs):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"success": false,
				"message": "Validation failed",
				"errors":  fieldErrs,
			})
		case errors.Is(err, services.ErrEmptyPayload):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"message": "Code generated successfully",
		"event":   event,
		"payload": event.Data,
	}
	if req.Format != "" {
		// the event is recorded whether or not an image can be produced
		resp["image"], resp["content_type"] = h.renderImage(r, event.Data, event.Symbology, req.Format, event.Style)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CodeHandler) renderImage(r *http.Request, data string, sym models.Symbology, format render.Format, style *models.StyleOptions) (interface{}, interface{}) {
	img, err := h.renderer.Render(r.Context(), data, sym, format, style)
	if err != nil {
		log.Printf("WARNING: Failed to render %s code: %v", sym, err)
		return nil, nil
	}
	return base64.StdEncoding.EncodeToString(img.Data), img.ContentType
}

// Render draws a payload without touching history. Failures answer 502 with a
// null image so the client can show "no image available".
func (h *CodeHandler) Render(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req renderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.EventID != "" {
		event, found := findEvent(h.histories.Store(r.Context(), userID), req.EventID)
		if !found {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		req.Data = event.Data
		req.Symbology = event.Symbology
		if req.Style == nil {
			req.Style = event.Style
		}
	}
	if req.Data == "" {
		writeError(w, http.StatusBadRequest, "Data is required")
		return
	}
	if req.Symbology == "" {
		req.Symbology = models.SymbologyQR
	}
	if !req.Symbology.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown symbology")
		return
	}

	img, err := h.renderer.Render(r.Context(), req.Data, req.Symbology, req.Format, req.Style)
	if err != nil {
		if errors.Is(err, render.ErrInvalidStyle) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("WARNING: Failed to render %s code: %v", req.Symbology, err)
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"message": "no image available",
			"image":   nil,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"content_type": img.ContentType,
		"image":        base64.StdEncoding.EncodeToString(img.Data),
	})
}

func findEvent(store *history.Store, id string) (models.ScanEvent, bool) {
	for _, ev := range store.Events() {
		if ev.ID == id {
			return ev, true
		}
	}
	return models.ScanEvent{}, false
}
