package models

import (
	"strings"
	"time"
)

// Symbology is the visual encoding family of a code
type Symbology string

const (
	SymbologyQR         Symbology = "qr"
	SymbologyAztec      Symbology = "aztec"
	SymbologyEAN13      Symbology = "ean13"
	SymbologyEAN8       Symbology = "ean8"
	SymbologyPDF417     Symbology = "pdf417"
	SymbologyUPCE       Symbology = "upc_e"
	SymbologyDataMatrix Symbology = "datamatrix"
	SymbologyCode39     Symbology = "code39"
	SymbologyCode93     Symbology = "code93"
	SymbologyITF14      Symbology = "itf14"
	SymbologyCodabar    Symbology = "codabar"
	SymbologyCode128    Symbology = "code128"
	SymbologyUPCA       Symbology = "upc_a"
)

// Symbologies lists every supported symbology
var Symbologies = []Symbology{
	SymbologyQR, SymbologyAztec, SymbologyEAN13, SymbologyEAN8, SymbologyPDF417,
	SymbologyUPCE, SymbologyDataMatrix, SymbologyCode39, SymbologyCode93,
	SymbologyITF14, SymbologyCodabar, SymbologyCode128, SymbologyUPCA,
}

// Valid reports whether s is a known symbology
func (s Symbology) Valid() bool {
	for _, known := range Symbologies {
		if s == known {
			return true
		}
	}
	return false
}

// IsBarcode is true for everything rendered by the barcode service rather than the QR renderer
func (s Symbology) IsBarcode() bool {
	return s.Valid() && s != SymbologyQR
}

// SemanticType is the classified meaning of a payload, independent of symbology
type SemanticType string

const (
	SemanticText     SemanticType = "text"
	SemanticURL      SemanticType = "url"
	SemanticEmail    SemanticType = "email"
	SemanticPhone    SemanticType = "phone"
	SemanticSMS      SemanticType = "sms"
	SemanticWifi     SemanticType = "wifi"
	SemanticVCard    SemanticType = "vcard"
	SemanticGeoPoint SemanticType = "geoPoint"
	SemanticCrypto   SemanticType = "crypto"
	SemanticEvent    SemanticType = "event"
)

// SemanticTypes lists every semantic type
var SemanticTypes = []SemanticType{
	SemanticText, SemanticURL, SemanticEmail, SemanticPhone, SemanticSMS,
	SemanticWifi, SemanticVCard, SemanticGeoPoint, SemanticCrypto, SemanticEvent,
}

// decoder vocabularies that differ from ours
var semanticAliases = map[string]SemanticType{
	"contact":       SemanticVCard,
	"contactinfo":   SemanticVCard,
	"geo":           SemanticGeoPoint,
	"calendar":      SemanticEvent,
	"calendarevent": SemanticEvent,
	"tel":           SemanticPhone,
}

// Valid reports whether t is one of the fixed semantic types
func (t SemanticType) Valid() bool {
	for _, known := range SemanticTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseSemanticType maps a canonical name or decoder alias to a SemanticType.
// Unrecognized input yields SemanticText.
func ParseSemanticType(s string) SemanticType {
	s = strings.TrimSpace(s)
	if t := SemanticType(s); t.Valid() {
		return t
	}
	lower := strings.ToLower(s)
	for _, known := range SemanticTypes {
		if strings.ToLower(string(known)) == lower {
			return known
		}
	}
	if t, ok := semanticAliases[lower]; ok {
		return t
	}
	return SemanticText
}

// Origin records where a ScanEvent came from
type Origin string

const (
	OriginScanner Origin = "scanner"
	OriginForm    Origin = "form"
)

// Point is a corner point reported by the decoder, in image pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a bounding box in image pixels
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Geometry is capture metadata carried through untouched
type Geometry struct {
	CornerPoints []Point `json:"corner_points,omitempty"`
	BoundingBox  *Rect   `json:"bounding_box,omitempty"`
}

// StyleOptions are rendering parameters handed to the renderers
type StyleOptions struct {
	ErrorCorrection string `json:"error_correction,omitempty" yaml:"error_correction"` // L, M, Q or H
	Margin          *int   `json:"margin,omitempty" yaml:"margin"`
	Scale           int    `json:"scale,omitempty" yaml:"scale"`
	Width           int    `json:"width,omitempty" yaml:"width"`
	Height          int    `json:"height,omitempty" yaml:"height"`
	ForegroundColor string `json:"foreground_color,omitempty" yaml:"foreground_color"`
	BackgroundColor string `json:"background_color,omitempty" yaml:"background_color"`
	ModuleWidth     int    `json:"module_width,omitempty" yaml:"module_width"`
	IncludeText     *bool  `json:"include_text,omitempty" yaml:"include_text"`
}

// Merge returns a copy of s with its unset fields taken from defaults
func (s *StyleOptions) Merge(defaults *StyleOptions) *StyleOptions {
	var out StyleOptions
	if s != nil {
		out = *s
	}
	if defaults == nil {
		return &out
	}
	if out.ErrorCorrection == "" {
		out.ErrorCorrection = defaults.ErrorCorrection
	}
	if out.Margin == nil {
		out.Margin = defaults.Margin
	}
	if out.Scale == 0 {
		out.Scale = defaults.Scale
	}
	if out.Width == 0 {
		out.Width = defaults.Width
	}
	if out.Height == 0 {
		out.Height = defaults.Height
	}
	if out.ForegroundColor == "" {
		out.ForegroundColor = defaults.ForegroundColor
	}
	if out.BackgroundColor == "" {
		out.BackgroundColor = defaults.BackgroundColor
	}
	if out.ModuleWidth == 0 {
		out.ModuleWidth = defaults.ModuleWidth
	}
	if out.IncludeText == nil {
		out.IncludeText = defaults.IncludeText
	}
	return &out
}

// ScanEvent is one recognized or generated code. It is never mutated after creation.
type ScanEvent struct {
	ID           string        `json:"id"`
	Data         string        `json:"data"`
	RawPayload   string        `json:"raw_payload,omitempty"`
	Symbology    Symbology     `json:"symbology"`
	SemanticType SemanticType  `json:"semantic_type"`
	Origin       Origin        `json:"origin"`
	CreatedAt    time.Time     `json:"created_at"`
	Style        *StyleOptions `json:"style,omitempty"`
	Geometry     *Geometry     `json:"geometry,omitempty"`
}
