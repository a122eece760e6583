package services

import (
	"fmt"
	"testing"

	"back_scan/internal/history"
	"back_scan/internal/models"
	"back_scan/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		formType models.FormType
		fields   map[string]any
		want     string
	}{
		{"text passthrough", models.FormText, map[string]any{"value": "hello world"}, "hello world"},
		{"url passthrough", models.FormURL, map[string]any{"value": "https://example.com/?q=1"}, "https://example.com/?q=1"},
		{"barcode passthrough", models.FormEAN13, map[string]any{"value": "4006381333931"}, "4006381333931"},
		{"email", models.FormEmail, map[string]any{"address": "a@b.com", "subject": "Hi", "body": "Body"}, "mailto:a@b.com?subject=Hi&body=Body"},
		{"phone", models.FormPhone, map[string]any{"number": "+1 555"}, "tel:+1 555"},
		{"sms", models.FormSMS, map[string]any{"number": "123", "body": "yo"}, "sms:123?body=yo"},
		{"wifi", models.FormWifi, map[string]any{"ssid": "MyNet"}, "WIFI:S:MyNet;T:nopass;H:false"},
		{"wifi hidden", models.FormWifi, map[string]any{"ssid": "N", "password": "p", "encryption": "WPA", "hidden": true}, "WIFI:S:N;P:p;T:WPA;H:true"},
		{"geo", models.FormGeoPoint, map[string]any{"latitude": 46.5, "longitude": 5.3}, "geo:46.5,5.3"},
		{"geo int altitude", models.FormGeoPoint, map[string]any{"latitude": 1, "longitude": 2, "altitude": 3}, "geo:1,2,3"},
		{"crypto", models.FormCrypto, map[string]any{"scheme": "bitcoin", "wallet_address": "addr", "amount": 0.5, "label": "L", "message": "M"}, "bitcoin:addr?amount=0.5?label=L&message=M"},
		{"event", models.FormEvent, map[string]any{"summary": "S"}, "BEGIN:VEVENT\nSUMMARY:S\nDESCRIPTION:undefined\nLOCATION:undefined\nDTSTART:undefined\nEND:VEVENT"},
		{"vcard", models.FormVCard, map[string]any{"first_name": "Ada", "last_name": "Lovelace", "title": "Countess"}, "BEGIN:VCARD\nVERSION:3.0\nN:Lovelace;Ada\nFN:Ada Lovelace\nTITLE:Countess\nEND:VCARD"},
		{"unknown type falls back to raw value", models.FormType("hologram"), map[string]any{"value": "raw"}, "raw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.formType, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeRejectsMistypedFields(t *testing.T) {
	_, err := Encode(models.FormGeoPoint, map[string]any{"latitude": "north"})
	assert.Error(t, err)
}

func TestGenerateRecordsEvent(t *testing.T) {
	gs := newGenerationService(t)
	store := history.NewStore()

	ev, err := gs.Generate(store, models.GenerateRequest{
		Type:   models.FormWifi,
		Fields: map[string]any{"ssid": "MyNet"},
		Style:  &models.StyleOptions{ErrorCorrection: "H"},
	})
	require.NoError(t, err)
	assert.Equal(t, "WIFI:S:MyNet;T:nopass;H:false", ev.Data)
	assert.Equal(t, models.OriginForm, ev.Origin)
	assert.Equal(t, models.SemanticWifi, ev.SemanticType)
	assert.Equal(t, models.SymbologyQR, ev.Symbology)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "H", ev.Style.ErrorCorrection)
	assert.Equal(t, []models.ScanEvent{ev}, store.Events())

	_, ok := store.Current()
	assert.False(t, ok, "generation does not touch the current selection")
}

func TestGenerateBarcodeIsText(t *testing.T) {
	gs := newGenerationService(t)
	store := history.NewStore()

	ev, err := gs.Generate(store, models.GenerateRequest{Type: models.FormCode128, Fields: map[string]any{"value": "ABC-123"}})
	require.NoError(t, err)
	assert.Equal(t, models.SymbologyCode128, ev.Symbology)
	assert.Equal(t, models.SemanticText, ev.SemanticType)
}

func TestGenerateIsIdempotent(t *testing.T) {
	gs := newGenerationService(t)
	store := history.NewStore()
	req := models.GenerateRequest{
		Type:   models.FormEmail,
		Fields: map[string]any{"address": "a@b.com", "subject": "Hi"},
	}

	first, err := gs.Generate(store, req)
	require.NoError(t, err)
	second, err := gs.Generate(store, req)
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, store.Len())
}

func TestGenerateValidationFailureLeavesHistoryAlone(t *testing.T) {
	gs := newGenerationService(t)
	store := history.NewStore()

	_, err := gs.Generate(store, models.GenerateRequest{
		Type:   models.FormGeoPoint,
		Fields: map[string]any{"latitude": 120.0},
	})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, map[string][]string{
		"latitude":  {"must be between -90 and 90"},
		"longitude": {"is required"},
	}, errs.ByField())
	assert.Zero(t, store.Len())
}

func TestGenerateUnknownTypePassesThrough(t *testing.T) {
	gs := newGenerationService(t)
	store := history.NewStore()

	ev, err := gs.Generate(store, models.GenerateRequest{Type: "hologram", Fields: map[string]any{"value": "raw"}})
	require.NoError(t, err)
	assert.Equal(t, "raw", ev.Data)
	assert.Equal(t, models.SemanticText, ev.SemanticType)
	assert.Equal(t, models.SymbologyQR, ev.Symbology)

	_, err = gs.Generate(store, models.GenerateRequest{Type: "hologram", Fields: map[string]any{}})
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestGenerateRespectsHistoryBound(t *testing.T) {
	gs := newGenerationService(t)
	store := history.NewStore()
	for i := 0; i <= history.MaxEntries; i++ {
		_, err := gs.Generate(store, models.GenerateRequest{Type: models.FormText, Fields: map[string]any{"value": fmt.Sprintf("v%d", i)}})
		require.NoError(t, err)
	}
	events := store.Events()
	require.Len(t, events, history.MaxEntries)
	assert.Equal(t, fmt.Sprintf("v%d", history.MaxEntries), events[0].Data)
	assert.Equal(t, "v1", events[len(events)-1].Data)
}

func TestEncodeTreatsBlankFieldsAsAbsent(t *testing.T) {
	tests := []struct {
		name     string
		formType models.FormType
		fields   map[string]any
		want     string
	}{
		{"email cc", models.FormEmail, map[string]any{"address": "a@b.com", "cc": "  "}, "mailto:a@b.com"},
		{"wifi password", models.FormWifi, map[string]any{"ssid": "Net", "password": "   "}, "WIFI:S:Net;T:nopass;H:false"},
		{"event location", models.FormEvent, map[string]any{"summary": "S", "location": " "}, "BEGIN:VEVENT\nSUMMARY:S\nDESCRIPTION:undefined\nLOCATION:undefined\nDTSTART:undefined\nEND:VEVENT"},
		{"sms body", models.FormSMS, map[string]any{"number": "123", "body": "\t"}, "sms:123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.formType, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateBlankOptionalFieldsAreAbsent(t *testing.T) {
	gs := newGenerationService(t)
	store := history.NewStore()

	_, err := gs.Generate(store, models.GenerateRequest{
		Type:   models.FormEmail,
		Fields: map[string]any{"address": "a@b.com", "cc": "  ", "bcc": "not-an-address"},
	})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "bcc", errs[0].Field)

	ev, err := gs.Generate(store, models.GenerateRequest{
		Type:   models.FormEmail,
		Fields: map[string]any{"address": "a@b.com", "cc": "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, "mailto:a@b.com", ev.Data)

	_, err = gs.Generate(store, models.GenerateRequest{
		Type:   models.FormText,
		Fields: map[string]any{"value": "   "},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, store.Len())
}
