package encode

import "strings"

const matmsgPrefix = "MATMSG:"

// ConvertMATMSGToMailto rewrites a MATMSG:TO:..;SUB:..;BODY:..;; payload as a
// mailto: URI. Fields are read by position. ok is false when the payload is
// not MATMSG.
func ConvertMATMSGToMailto(payload string) (mailto string, ok bool) {
	if !strings.HasPrefix(payload, matmsgPrefix) {
		return "", false
	}
	parts := strings.Split(strings.TrimPrefix(payload, matmsgPrefix), ";")
	field := func(i int, prefix string) string {
		if i >= len(parts) {
			return ""
		}
		return strings.TrimPrefix(parts[i], prefix)
	}
	address := field(0, "TO:")
	subject := field(1, "SUB:")
	body := field(2, "BODY:")
	return Email(address, EmailOptions{Subject: subject, Body: body}), true
}

// ConvertSMSTOToSMS rewrites the phone number and message a decoder extracted
// from an SMSTO: payload as an sms: URI. Both are required.
func ConvertSMSTOToSMS(phoneNumber, message string) (sms string, ok bool) {
	if phoneNumber == "" || message == "" {
		return "", false
	}
	return SMS(phoneNumber, message), true
}
