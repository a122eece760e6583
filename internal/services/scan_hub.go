package services

import (
	"context"
	"sync"

	"back_scan/internal/models"
)

// Scan notification kinds
const (
	ScanNotificationScanned   = "scanned"
	ScanNotificationDismissed = "dismissed"
)

// ScanNotification tells a user's connected clients about their current scan
type ScanNotification struct {
	Kind  string            `json:"kind"`
	Event *models.ScanEvent `json:"event,omitempty"`
}

// ScanHub fans scan notifications out to every subscriber of a user
type ScanHub struct {
	mu   sync.Mutex
	subs map[uint]map[chan ScanNotification]struct{}
}

func NewScanHub() *ScanHub {
	return &ScanHub{subs: make(map[uint]map[chan ScanNotification]struct{})}
}

// Subscribe returns a channel of notifications for userID that is closed when ctx ends
func (h *ScanHub) Subscribe(ctx context.Context, userID uint) <-chan ScanNotification {
	ch := make(chan ScanNotification, 8)
	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan ScanNotification]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[userID], ch)
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
		close(ch)
		h.mu.Unlock()
	}()
	return ch
}

// Publish never blocks; a slow subscriber loses its oldest notification
func (h *ScanHub) Publish(userID uint, n ScanNotification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[userID] {
		pushNotification(ch, n)
	}
}

// Subscribers reports how many subscriptions userID has
func (h *ScanHub) Subscribers(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

func pushNotification(ch chan ScanNotification, n ScanNotification) {
	select {
	case ch <- n:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- n:
	default:
	}
}
