package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"back_scan/internal/encode"
	"back_scan/internal/history"
	"back_scan/internal/models"
	"back_scan/internal/validation"

	"github.com/google/uuid"
)

// ErrEmptyPayload is returned when a form or scan yields no data to record
var ErrEmptyPayload = errors.New("payload is empty")

// GenerationService turns validated forms into payloads and records them
type GenerationService struct {
	validator *validation.Validator
	now       func() time.Time
}

func NewGenerationService(validator *validation.Validator) *GenerationService {
	return &GenerationService{validator: validator, now: time.Now}
}

// Validate checks a form without generating anything
func (gs *GenerationService) Validate(formType models.FormType, fields map[string]any) []validation.FieldError {
	return gs.validator.Validate(formType, fields)
}

// Generate validates req, encodes its payload and adds the resulting event to
// store. A form type without rules skips validation and passes its raw value
// through. Generating an already recorded payload returns a fresh event but
// leaves history unchanged.
func (gs *GenerationService) Generate(store *history.Store, req models.GenerateRequest) (models.ScanEvent, error) {
	if gs.validator.Supports(req.Type) {
		if err := gs.validator.Check(req.Type, req.Fields); err != nil {
			return models.ScanEvent{}, err
		}
	} else {
		log.Printf("WARNING: No validation rules for form type %q, passing raw value through", req.Type)
	}

	payload, err := Encode(req.Type, req.Fields)
	if err != nil {
		return models.ScanEvent{}, err
	}
	if payload == "" {
		return models.ScanEvent{}, ErrEmptyPayload
	}

	ev := models.ScanEvent{
		ID:           uuid.NewString(),
		Data:         payload,
		Symbology:    req.Type.Symbology(),
		SemanticType: req.Type.SemanticType(),
		Origin:       models.OriginForm,
		CreatedAt:    gs.now().UTC(),
		Style:        req.Style,
	}
	if store.Add(ev) {
		log.Printf("DEBUG: Recorded generated %s code (%s)", ev.SemanticType, ev.Symbology)
	}
	return ev, nil
}

// Encode produces the payload for a form. It does not validate.
func Encode(formType models.FormType, fields map[string]any) (string, error) {
	switch formType {
	case models.FormEmail:
		var f models.EmailForm
		if err := decodeForm(fields, &f); err != nil {
			return "", err
		}
		return encode.Email(f.Address, encode.EmailOptions{Subject: f.Subject, Body: f.Body, CC: f.CC, BCC: f.BCC}), nil
	case models.FormPhone:
		var f models.PhoneForm
		if err := decodeForm(fields, &f); err != nil {
			return "", err
		}
		return encode.Phone(f.Number), nil
	case models.FormSMS:
		var f models.SMSForm
		if err := decodeForm(fields, &f); err != nil {
			return "", err
		}
		return encode.SMS(f.Number, f.Body), nil
	case models.FormWifi:
		var f models.WifiForm
		if err := decodeForm(fields, &f); err != nil {
			return "", err
		}
		return encode.Wifi(f.SSID, encode.WifiOptions{Password: f.Password, Encryption: f.Encryption, Hidden: f.Hidden}), nil
	case models.FormVCard:
		var f models.VCardForm
		if err := decodeForm(fields, &f); err != nil {
			return "", err
		}
		return encode.VCardText(encode.VCard{
			FirstName:    f.FirstName,
			LastName:     f.LastName,
			Email:        f.Email,
			Phone:        f.Phone,
			Organization: f.Organization,
			Title:        f.Title,
			URL:          f.URL,
			Address:      f.Address,
		}), nil
	case models.FormGeoPoint:
		var f models.GeoForm
		if err := decodeForm(fields, &f); err != nil {
			return "", err
		}
		return encode.Geo(f.Latitude, f.Longitude, f.Altitude), nil
	case models.FormCrypto:
		var f models.CryptoForm
		if err := decodeForm(fields, &f); err != nil {
			return "", err
		}
		return encode.Crypto(f.Scheme, f.WalletAddress, f.Amount, f.Label, f.Message), nil
	case models.FormEvent:
		var f models.EventForm
		if err := decodeForm(fields, &f); err != nil {
			return "", err
		}
		return encode.Event(encode.EventFields{
			Summary:     f.Summary,
			Description: f.Description,
			Location:    f.Location,
			StartDate:   f.StartDate,
		}), nil
	case models.FormText, models.FormURL,
		models.FormAztec, models.FormEAN13, models.FormEAN8, models.FormPDF417,
		models.FormUPCE, models.FormDataMatrix, models.FormCode39, models.FormCode93,
		models.FormITF14, models.FormCodabar, models.FormCode128, models.FormUPCA:
		return rawValue(fields)
	default:
		return rawValue(fields)
	}
}

func rawValue(fields map[string]any) (string, error) {
	var f models.ValueForm
	if err := decodeForm(fields, &f); err != nil {
		return "", err
	}
	return f.Value, nil
}

// decodeForm copies a loosely typed field map into a typed form. Blank fields
// are dropped so they reach the encoders as absent.
func decodeForm(fields map[string]any, dst any) error {
	raw, err := json.Marshal(validation.Present(fields))
	if err != nil {
		return fmt.Errorf("invalid form fields: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid form fields: %w", err)
	}
	return nil
}
