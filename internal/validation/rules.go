package validation

import (
	"back_scan/internal/encode"
	"back_scan/internal/models"
)

// Kind is the JSON type a field must have
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// Constraint is one check on a present field, expressed as JSON Schema keywords
type Constraint struct {
	Keywords map[string]any
	Message  string
}

// FieldRule describes one form field
type FieldRule struct {
	Name        string
	Required    bool
	Kind        Kind
	Constraints []Constraint
}

func pattern(re, msg string) Constraint {
	return Constraint{Keywords: map[string]any{"pattern": re}, Message: msg}
}

func format(f, msg string) Constraint {
	return Constraint{Keywords: map[string]any{"format": f}, Message: msg}
}

func minLength(n int, msg string) Constraint {
	return Constraint{Keywords: map[string]any{"minLength": n}, Message: msg}
}

func maxLength(n int, msg string) Constraint {
	return Constraint{Keywords: map[string]any{"maxLength": n}, Message: msg}
}

func oneOf(msg string, values ...string) Constraint {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return Constraint{Keywords: map[string]any{"enum": enum}, Message: msg}
}

func between(min, max float64, msg string) Constraint {
	return Constraint{Keywords: map[string]any{"minimum": min, "maximum": max}, Message: msg}
}

func positive(msg string) Constraint {
	return Constraint{Keywords: map[string]any{"exclusiveMinimum": 0}, Message: msg}
}

func str(name string, required bool, constraints ...Constraint) FieldRule {
	return FieldRule{Name: name, Required: required, Kind: KindString, Constraints: constraints}
}

func num(name string, required bool, constraints ...Constraint) FieldRule {
	return FieldRule{Name: name, Required: required, Kind: KindNumber, Constraints: constraints}
}

func boolean(name string) FieldRule {
	return FieldRule{Name: name, Kind: KindBoolean}
}

const (
	phonePattern  = `^\+?[0-9()\-. ]{3,20}$`
	walletPattern = `^[A-Za-z0-9]{20,100}$`
	icalDate      = `^[0-9]{8}(T[0-9]{6}Z?)?$`
	code39Charset = `^[0-9A-Z \-.$/+%]+$`
	code93Charset = `^[ -_]+$` // 0x20-0x5F, printable ASCII without lowercase
)

var (
	nonEmpty     = minLength(1, "must not be empty")
	validEmail   = format("email", "must be a valid email address")
	validURL     = format("uri", "must be a valid URL")
	httpScheme   = pattern(`^(?i)https?://`, "must start with http:// or https://")
	validPhone   = pattern(phonePattern, "must be a valid phone number")
	barcodeValue = func(constraints ...Constraint) []FieldRule {
		return []FieldRule{str("value", true, constraints...)}
	}
)

// Rules is the constraint table for every form type. Fields are checked in the listed order.
var Rules = map[models.FormType][]FieldRule{
	models.FormText: {str("value", true, nonEmpty)},
	models.FormURL:  {str("value", true, validURL, httpScheme)},
	models.FormEmail: {
		str("address", true, validEmail),
		str("subject", false),
		str("body", false),
		str("cc", false, validEmail),
		str("bcc", false, validEmail),
	},
	models.FormPhone: {str("number", true, validPhone)},
	models.FormSMS: {
		str("number", true, validPhone),
		str("body", false, maxLength(918, "must be at most 918 characters")),
	},
	models.FormWifi: {
		str("ssid", true, nonEmpty, maxLength(32, "must be at most 32 characters")),
		str("password", false, maxLength(63, "must be at most 63 characters")),
		str("encryption", false, oneOf("must be one of WPA, WPA2, WPA3, WEP or nopass", "WPA", "WPA2", "WPA3", "WEP", "nopass")),
		boolean("hidden"),
	},
	models.FormVCard: {
		str("first_name", true, nonEmpty),
		str("last_name", true, nonEmpty),
		str("email", false, validEmail),
		str("phone", false, validPhone),
		str("organization", false),
		str("title", false),
		str("url", false, validURL, httpScheme),
		str("address", false),
	},
	models.FormGeoPoint: {
		num("latitude", true, between(-90, 90, "must be between -90 and 90")),
		num("longitude", true, between(-180, 180, "must be between -180 and 180")),
		num("altitude", false),
	},
	models.FormCrypto: {
		str("scheme", true, oneOf("must be one of bitcoin, ethereum or litecoin", encode.CryptoSchemes...)),
		str("wallet_address", true, pattern(walletPattern, "must be 20 to 100 letters or digits")),
		num("amount", true, positive("must be greater than 0")),
		str("label", false),
		str("message", false),
	},
	models.FormEvent: {
		str("summary", true, nonEmpty),
		str("description", false),
		str("location", false),
		str("start_date", false, pattern(icalDate, "must be an iCalendar date such as 20261019T090000Z")),
	},

	models.FormEAN13: barcodeValue(pattern(`^[0-9]{12,13}$`, "must be 12 or 13 digits")),
	models.FormEAN8:  barcodeValue(pattern(`^[0-9]{7,8}$`, "must be 7 or 8 digits")),
	models.FormUPCA: barcodeValue(
		pattern(`^[0-9]{11,12}$`, "must be 11 or 12 digits"),
		pattern(`0`, "must contain at least one 0"),
	),
	models.FormUPCE:  barcodeValue(pattern(`^[0-9]{6,8}$`, "must be 6 to 8 digits")),
	models.FormITF14: barcodeValue(pattern(`^[0-9]{13,14}$`, "must be 13 or 14 digits")),
	models.FormCode39: barcodeValue(
		pattern(code39Charset, "may only contain 0-9, A-Z, space and - . $ / + %"),
	),
	models.FormCode93: barcodeValue(
		pattern(code93Charset, "may only contain uppercase printable ASCII characters"),
	),
	models.FormCodabar: barcodeValue(
		pattern(`^[A-Da-d]?[0-9\-$:/.+]+[A-Da-d]?$`, "may only contain 0-9 and - $ : / . + with optional A-D start/stop characters"),
	),
	models.FormCode128:    barcodeValue(nonEmpty, pattern(`^[ -~]+$`, "may only contain printable ASCII characters")),
	models.FormPDF417:     barcodeValue(nonEmpty),
	models.FormAztec:      barcodeValue(nonEmpty),
	models.FormDataMatrix: barcodeValue(nonEmpty),
}
