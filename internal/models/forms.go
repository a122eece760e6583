package models

// FormType discriminates generator forms. QR forms share their name with the
// SemanticType they produce; barcode forms share their name with the Symbology.
type FormType string

const (
	FormText     FormType = FormType(SemanticText)
	FormURL      FormType = FormType(SemanticURL)
	FormEmail    FormType = FormType(SemanticEmail)
	FormPhone    FormType = FormType(SemanticPhone)
	FormSMS      FormType = FormType(SemanticSMS)
	FormWifi     FormType = FormType(SemanticWifi)
	FormVCard    FormType = FormType(SemanticVCard)
	FormGeoPoint FormType = FormType(SemanticGeoPoint)
	FormCrypto   FormType = FormType(SemanticCrypto)
	FormEvent    FormType = FormType(SemanticEvent)

	FormAztec      FormType = FormType(SymbologyAztec)
	FormEAN13      FormType = FormType(SymbologyEAN13)
	FormEAN8       FormType = FormType(SymbologyEAN8)
	FormPDF417     FormType = FormType(SymbologyPDF417)
	FormUPCE       FormType = FormType(SymbologyUPCE)
	FormDataMatrix FormType = FormType(SymbologyDataMatrix)
	FormCode39     FormType = FormType(SymbologyCode39)
	FormCode93     FormType = FormType(SymbologyCode93)
	FormITF14      FormType = FormType(SymbologyITF14)
	FormCodabar    FormType = FormType(SymbologyCodabar)
	FormCode128    FormType = FormType(SymbologyCode128)
	FormUPCA       FormType = FormType(SymbologyUPCA)
)

// IsBarcode reports whether the form produces a non-QR symbology
func (f FormType) IsBarcode() bool {
	return Symbology(f).IsBarcode()
}

// Symbology is the symbology a generated code of this form is rendered with
func (f FormType) Symbology() Symbology {
	if f.IsBarcode() {
		return Symbology(f)
	}
	return SymbologyQR
}

// SemanticType is the semantic type recorded for codes generated from this form.
// Barcodes carry plain text.
func (f FormType) SemanticType() SemanticType {
	if t := SemanticType(f); t.Valid() {
		return t
	}
	return SemanticText
}

// GenerateRequest is a generator form as submitted by the client
type GenerateRequest struct {
	Type   FormType       `json:"type"`
	Fields map[string]any `json:"fields"`
	Style  *StyleOptions  `json:"style,omitempty"`
}

// ValueForm carries a single raw value: text, url and every barcode symbology
type ValueForm struct {
	Value string `json:"value"`
}

type EmailForm struct {
	Address string `json:"address"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
	CC      string `json:"cc,omitempty"`
	BCC     string `json:"bcc,omitempty"`
}

type PhoneForm struct {
	Number string `json:"number"`
}

type SMSForm struct {
	Number string `json:"number"`
	Body   string `json:"body,omitempty"`
}

type WifiForm struct {
	SSID       string `json:"ssid"`
	Password   string `json:"password,omitempty"`
	Encryption string `json:"encryption,omitempty"`
	Hidden     bool   `json:"hidden,omitempty"`
}

type VCardForm struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Organization string `json:"organization,omitempty"`
	Title        string `json:"title,omitempty"`
	URL          string `json:"url,omitempty"`
	Address      string `json:"address,omitempty"`
}

type GeoForm struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude,omitempty"`
}

type CryptoForm struct {
	Scheme        string  `json:"scheme"`
	WalletAddress string  `json:"wallet_address"`
	Amount        float64 `json:"amount"`
	Label         string  `json:"label,omitempty"`
	Message       string  `json:"message,omitempty"`
}

type EventForm struct {
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
}
