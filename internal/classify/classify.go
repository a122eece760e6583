// Package classify derives the semantic type of a decoded payload from the
// payload itself and the hints the decoder attached to it.
package classify

import (
	"strings"

	"back_scan/internal/encode"
	"back_scan/internal/models"
)

// RawResult is one decode delivered by the scanner
type RawResult struct {
	Payload   string           `json:"payload"`
	Symbology models.Symbology `json:"symbology"`
	// Hint is the decoder's own guess at the content type, if any
	Hint string `json:"hint,omitempty"`
	// SSID is set when the decoder parsed a Wi-Fi network config
	SSID string `json:"ssid,omitempty"`
	// PhoneNumber and Message are set when the decoder parsed an SMSTO payload
	PhoneNumber string           `json:"phone_number,omitempty"`
	Message     string           `json:"message,omitempty"`
	Geometry    *models.Geometry `json:"geometry,omitempty"`
}

const hintURL = "url"

// Classify returns the semantic type of a raw result. The first matching rule wins:
// url-hinted mailto: is email, url-hinted sms: is sms, a decoded SSID is wifi,
// otherwise the decoder hint, otherwise text. The mailto:/sms: rules need the
// hint to be exactly "url".
func Classify(r RawResult) models.SemanticType {
	if r.Hint == hintURL {
		if strings.HasPrefix(r.Payload, "mailto:") {
			return models.SemanticEmail
		}
		if strings.HasPrefix(r.Payload, "sms:") {
			return models.SemanticSMS
		}
	}
	if r.SSID != "" {
		return models.SemanticWifi
	}
	if hint := strings.TrimSpace(r.Hint); hint != "" {
		return models.ParseSemanticType(hint)
	}
	return models.SemanticText
}

// Normalize classifies r and rewrites legacy payload formats into their URI
// equivalents. When no conversion applies the payload is returned unchanged.
func Normalize(r RawResult) (data string, semantic models.SemanticType) {
	if mailto, ok := encode.ConvertMATMSGToMailto(r.Payload); ok {
		return mailto, models.SemanticEmail
	}
	if sms, ok := encode.ConvertSMSTOToSMS(r.PhoneNumber, r.Message); ok {
		return sms, models.SemanticSMS
	}
	return r.Payload, Classify(r)
}
