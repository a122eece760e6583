// Package encode turns structured form fields into the payload strings written
// into generated codes. Every function is pure. An empty string or zero value
// means the field is absent and its segment is left out, except where a
// format always emits a segment.
package encode

import (
	"strconv"
	"strings"
)

// absentEventField is rendered for VEVENT properties that were not supplied
const absentEventField = "undefined"

// query appends key=value pairs in order, separating the first present one
// with '?' and the rest with '&'
type query struct {
	b     strings.Builder
	first bool
}

func newQuery(base string) *query {
	q := &query{first: true}
	q.b.WriteString(base)
	return q
}

func (q *query) add(key, value string) {
	if value == "" {
		return
	}
	if q.first {
		q.b.WriteByte('?')
		q.first = false
	} else {
		q.b.WriteByte('&')
	}
	q.b.WriteString(key)
	q.b.WriteByte('=')
	q.b.WriteString(value)
}

func (q *query) String() string {
	return q.b.String()
}

// EmailOptions are the optional mailto header fields
type EmailOptions struct {
	Subject string
	Body    string
	CC      string
	BCC     string
}

// Email builds a mailto: URI. Header order is subject, body, cc, bcc.
func Email(address string, opts EmailOptions) string {
	q := newQuery("mailto:" + address)
	q.add("subject", opts.Subject)
	q.add("body", opts.Body)
	q.add("cc", opts.CC)
	q.add("bcc", opts.BCC)
	return q.String()
}

// Phone builds a tel: URI. The number is not normalized.
func Phone(number string) string {
	return "tel:" + number
}

// SMS builds an sms: URI
func SMS(number, body string) string {
	q := newQuery("sms:" + number)
	q.add("body", body)
	return q.String()
}

// WifiOptions are the optional parts of a WIFI: network config
type WifiOptions struct {
	Password   string
	Encryption string
	Hidden     bool
}

// Wifi builds a WIFI: config string. T and H are always present; P only with a password.
func Wifi(ssid string, opts WifiOptions) string {
	var b strings.Builder
	b.WriteString("WIFI:S:")
	b.WriteString(ssid)
	if opts.Password != "" {
		b.WriteString(";P:")
		b.WriteString(opts.Password)
	}
	encryption := opts.Encryption
	if encryption == "" {
		encryption = "nopass"
	}
	b.WriteString(";T:")
	b.WriteString(encryption)
	b.WriteString(";H:")
	b.WriteString(strconv.FormatBool(opts.Hidden))
	return b.String()
}

// VCard holds the fields of a contact card
type VCard struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Organization string
	Title        string
	URL          string
	Address      string
}

// VCardText builds a vCard 3.0 block. Optional lines follow N and FN in the
// fixed order ORG, TITLE, ADR, EMAIL, TEL, URL.
func VCardText(card VCard) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"N:" + card.LastName + ";" + card.FirstName,
		"FN:" + card.FirstName + " " + card.LastName,
	}
	optional := []struct {
		prefix string
		value  string
	}{
		{"ORG:", card.Organization},
		{"TITLE:", card.Title},
		{"ADR:", card.Address},
		{"EMAIL:", card.Email},
		{"TEL:", card.Phone},
		{"URL:", card.URL},
	}
	for _, field := range optional {
		if field.value != "" {
			lines = append(lines, field.prefix+field.value)
		}
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n")
}

// Geo builds a geo: URI. An altitude of 0 is treated as not supplied.
func Geo(latitude, longitude, altitude float64) string {
	s := "geo:" + formatNumber(latitude) + "," + formatNumber(longitude)
	if altitude != 0 {
		s += "," + formatNumber(altitude)
	}
	return s
}

// Crypto schemes accepted by the generator
const (
	SchemeBitcoin  = "bitcoin"
	SchemeEthereum = "ethereum"
	SchemeLitecoin = "litecoin"
)

// CryptoSchemes lists the accepted payment URI schemes
var CryptoSchemes = []string{SchemeBitcoin, SchemeEthereum, SchemeLitecoin}

// Crypto builds a payment URI. The label segment is also introduced with '?',
// after the amount's.
func Crypto(scheme, address string, amount float64, label, message string) string {
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteByte(':')
	b.WriteString(address)
	b.WriteString("?amount=")
	b.WriteString(formatNumber(amount))
	if label != "" {
		b.WriteString("?label=")
		b.WriteString(label)
	}
	if message != "" {
		b.WriteString("&message=")
		b.WriteString(message)
	}
	return b.String()
}

// EventFields holds the fields of a calendar event
type EventFields struct {
	Summary     string
	Description string
	Location    string
	StartDate   string
}

// Event builds a VEVENT block. Every property line is always emitted.
func Event(ev EventFields) string {
	lines := []string{
		"BEGIN:VEVENT",
		"SUMMARY:" + ev.Summary,
		"DESCRIPTION:" + orAbsent(ev.Description),
		"LOCATION:" + orAbsent(ev.Location),
		"DTSTART:" + orAbsent(ev.StartDate),
		"END:VEVENT",
	}
	return strings.Join(lines, "\n")
}

func orAbsent(s string) string {
	if s == "" {
		return absentEventField
	}
	return s
}

// formatNumber renders the shortest decimal that round-trips, e.g. 46.5 or 5
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
