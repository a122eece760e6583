package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"back_scan/internal/classify"
	"back_scan/internal/history"
	"back_scan/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrScanInFlight is returned while a previous scan is still the current selection
	ErrScanInFlight = errors.New("a scan is already being handled")
	// ErrUnknownSymbology is returned for a scan of a symbology the service does not know
	ErrUnknownSymbology = errors.New("unknown symbology")
)

// ScanService ingests decoder results
type ScanService struct {
	hub *ScanHub
	now func() time.Time
}

// NewScanService creates the service. hub may be nil.
func NewScanService(hub *ScanHub) *ScanService {
	return &ScanService{hub: hub, now: time.Now}
}

// HandleScan classifies a decoder result, records it and makes it the current
// selection. Only one scan is handled until the current selection is dismissed;
// later ones get ErrScanInFlight.
func (ss *ScanService) HandleScan(userID uint, store *history.Store, raw classify.RawResult) (models.ScanEvent, error) {
	if raw.Payload == "" {
		return models.ScanEvent{}, ErrEmptyPayload
	}
	symbology := raw.Symbology
	if symbology == "" {
		symbology = models.SymbologyQR
	}
	if !symbology.Valid() {
		return models.ScanEvent{}, fmt.Errorf("%w: %s", ErrUnknownSymbology, raw.Symbology)
	}

	data, semantic := classify.Normalize(raw)
	ev := models.ScanEvent{
		ID:           uuid.NewString(),
		Data:         data,
		RawPayload:   raw.Payload,
		Symbology:    symbology,
		SemanticType: semantic,
		Origin:       models.OriginScanner,
		CreatedAt:    ss.now().UTC(),
		Geometry:     raw.Geometry,
	}
	if !store.SetCurrentIfEmpty(ev) {
		return models.ScanEvent{}, ErrScanInFlight
	}
	if store.Add(ev) {
		log.Printf("DEBUG: Recorded scanned %s code (%s) for user %d", ev.SemanticType, ev.Symbology, userID)
	}
	if ss.hub != nil {
		ss.hub.Publish(userID, ScanNotification{Kind: ScanNotificationScanned, Event: &ev})
	}
	return ev, nil
}

// Dismiss clears the current selection so the next scan is accepted
func (ss *ScanService) Dismiss(userID uint, store *history.Store) {
	store.ClearCurrent()
	if ss.hub != nil {
		ss.hub.Publish(userID, ScanNotification{Kind: ScanNotificationDismissed})
	}
}
