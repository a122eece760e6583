package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"back_scan/internal/classify"
	"back_scan/internal/history"
	"back_scan/internal/models"
	"back_scan/internal/services"

	"github.com/gorilla/websocket"
)

const (
	scanWSWriteWait = 10 * time.Second
	scanWSPongWait  = 60 * time.Second
	scanWSPingEvery = (scanWSPongWait * 9) / 10
)

// ScanHandler ingests decoder results over HTTP and a per-user websocket stream
type ScanHandler struct {
	scans     *services.ScanService
	hub       *services.ScanHub
	histories *history.Registry
	upgrader  websocket.Upgrader
}

// NewScanHandler creates the handler. Websocket origins are checked against
// allowedOrigins the same way CORS is.
func NewScanHandler(scans *services.ScanService, hub *services.ScanHub, histories *history.Registry, allowedOrigins []string) *ScanHandler {
	return &ScanHandler{
		scans:     scans,
		hub:       hub,
		histories: histories,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

type scanWSInbound struct {
	Type string              `json:"type"`
	Scan *classify.RawResult `json:"scan,omitempty"`
}

type scanWSOutbound struct {
	Type    string            `json:"type"`
	Event   *models.ScanEvent `json:"event,omitempty"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Submit handles one decoder result
func (h *ScanHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var raw classify.RawResult
	if !decodeBody(w, r, &raw) {
		return
	}

	store, release := h.histories.Acquire(r.Context(), userID)
	defer release()
	event, err := h.scans.HandleScan(userID, store, raw)
	if err != nil {
		status, code := scanErrorStatus(err)
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"code":    code,
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Scan recorded",
		"event":   event,
	})
}

// Dismiss clears the current selection so the scanner resumes
func (h *ScanHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	store, release := h.histories.Acquire(r.Context(), userID)
	defer release()
	h.scans.Dismiss(userID, store)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Scan dismissed",
	})
}

func scanErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrScanInFlight):
		return http.StatusConflict, "scan_in_flight"
	case errors.Is(err, services.ErrEmptyPayload), errors.Is(err, services.ErrUnknownSymbology):
		return http.StatusBadRequest, "invalid_argument"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// Stream upgrades to a websocket that pushes scan notifications for the user
// and accepts "scan", "dismiss" and "ping" messages from the scanner.
func (h *ScanHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(scanWSPongWait)); err != nil {
		log.Printf("WARNING: scan ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(scanWSPongWait))
	})

	writeCh := make(chan scanWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(scanWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(scanWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(scanWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	notifications := h.hub.Subscribe(ctx, userID)
	pushScanWS(writeCh, scanWSOutbound{Type: "subscribed"})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-notifications:
				if !ok {
					return
				}
				pushScanWS(writeCh, scanWSOutbound{Type: n.Kind, Event: n.Event})
			}
		}
	}()

	// held for the session so HTTP requests and this socket share one store
	store, release := h.histories.Acquire(ctx, userID)
	defer release()
	for {
		var in scanWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}

		switch in.Type {
		case "scan":
			if in.Scan == nil {
				pushScanWS(writeCh, scanWSOutbound{Type: "error", Code: "invalid_argument", Message: "scan is required"})
				continue
			}
			// success is delivered through the hub like scans from any other connection
			if _, err := h.scans.HandleScan(userID, store, *in.Scan); err != nil {
				_, code := scanErrorStatus(err)
				pushScanWS(writeCh, scanWSOutbound{Type: "error", Code: code, Message: err.Error()})
			}
		case "dismiss":
			h.scans.Dismiss(userID, store)
		case "ping":
			pushScanWS(writeCh, scanWSOutbound{Type: "pong"})
		default:
			pushScanWS(writeCh, scanWSOutbound{Type: "error", Code: "invalid_argument", Message: "unknown message type"})
		}
	}
}

// pushScanWS enqueues out, dropping the oldest queued message when the writer falls behind
func pushScanWS(writeCh chan scanWSOutbound, out scanWSOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
