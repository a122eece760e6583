package encode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		address string
		opts    EmailOptions
		want    string
	}{
		{"address only", "a@b.com", EmailOptions{}, "mailto:a@b.com"},
		{"subject and body", "a@b.com", EmailOptions{Subject: "Hi", Body: "Body"}, "mailto:a@b.com?subject=Hi&body=Body"},
		{"body only", "a@b.com", EmailOptions{Body: "Body"}, "mailto:a@b.com?body=Body"},
		{"cc and bcc", "a@b.com", EmailOptions{CC: "c@d.com", BCC: "e@f.com"}, "mailto:a@b.com?cc=c@d.com&bcc=e@f.com"},
		{
			"all fields",
			"a@b.com",
			EmailOptions{Subject: "S", Body: "B", CC: "c@d.com", BCC: "e@f.com"},
			"mailto:a@b.com?subject=S&body=B&cc=c@d.com&bcc=e@f.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.address, tt.opts))
		})
	}
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "tel:+1 (555) 010-0199", Phone("+1 (555) 010-0199"))
}

func TestSMS(t *testing.T) {
	assert.Equal(t, "sms:+33612345678", SMS("+33612345678", ""))
	assert.Equal(t, "sms:+33612345678?body=on my way", SMS("+33612345678", "on my way"))
}

func TestWifi(t *testing.T) {
	assert.Equal(t, "WIFI:S:MyNet;T:nopass;H:false", Wifi("MyNet", WifiOptions{}))
	assert.Equal(t, "WIFI:S:MyNet;P:secret;T:WPA;H:true",
		Wifi("MyNet", WifiOptions{Password: "secret", Encryption: "WPA", Hidden: true}))
	// password without encryption still reports nopass
	assert.Equal(t, "WIFI:S:MyNet;P:secret;T:nopass;H:false", Wifi("MyNet", WifiOptions{Password: "secret"}))
}

func TestVCardText(t *testing.T) {
	t.Run("names only", func(t *testing.T) {
		got := VCardText(VCard{FirstName: "Ada", LastName: "Lovelace"})
		assert.Equal(t, "BEGIN:VCARD\nVERSION:3.0\nN:Lovelace;Ada\nFN:Ada Lovelace\nEND:VCARD", got)
	})

	t.Run("fixed optional order", func(t *testing.T) {
		got := VCardText(VCard{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			URL:          "https://example.org",
			Phone:        "+441234",
			Email:        "ada@example.org",
			Address:      "12 St James's Square",
			Title:        "Analyst",
			Organization: "Analytical Engines",
		})
		want := strings.Join([]string{
			"BEGIN:VCARD",
			"VERSION:3.0",
			"N:Lovelace;Ada",
			"FN:Ada Lovelace",
			"ORG:Analytical Engines",
			"TITLE:Analyst",
			"ADR:12 St James's Square",
			"EMAIL:ada@example.org",
			"TEL:+441234",
			"URL:https://example.org",
			"END:VCARD",
		}, "\n")
		assert.Equal(t, want, got)
	})

	t.Run("sparse fields", func(t *testing.T) {
		got := VCardText(VCard{FirstName: "Ada", LastName: "Lovelace", Phone: "+441234"})
		assert.Equal(t, "BEGIN:VCARD\nVERSION:3.0\nN:Lovelace;Ada\nFN:Ada Lovelace\nTEL:+441234\nEND:VCARD", got)
	})
}

func TestGeo(t *testing.T) {
	assert.Equal(t, "geo:46.5,5.3", Geo(46.5, 5.3, 0))
	assert.Equal(t, "geo:46.5,5.3,120", Geo(46.5, 5.3, 120))
	assert.Equal(t, "geo:-33.8688,151.2093,-2.5", Geo(-33.8688, 151.2093, -2.5))
	assert.Equal(t, "geo:0,0", Geo(0, 0, 0))
}

func TestCrypto(t *testing.T) {
	assert.Equal(t, "bitcoin:1BoatSLRHtKNngkdXEeobR76b53LETtpyT?amount=0.5",
		Crypto(SchemeBitcoin, "1BoatSLRHtKNngkdXEeobR76b53LETtpyT", 0.5, "", ""))
	assert.Equal(t, "ethereum:0xabc?amount=2?label=Rent&message=June",
		Crypto(SchemeEthereum, "0xabc", 2, "Rent", "June"))
	assert.Equal(t, "litecoin:Labc?amount=1.25&message=tip",
		Crypto(SchemeLitecoin, "Labc", 1.25, "", "tip"))
	// amounts are always plain decimals, never exponent notation
	assert.Equal(t, "bitcoin:addr?amount=0.00000001",
		Crypto(SchemeBitcoin, "addr", 1e-8, "", ""))
	assert.Equal(t, "bitcoin:addr?amount=21000000000000000000000",
		Crypto(SchemeBitcoin, "addr", 2.1e22, "", ""))
}

func TestEvent(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		got := Event(EventFields{
			Summary:     "Standup",
			Description: "Daily sync",
			Location:    "Room 4",
			StartDate:   "20261019T090000Z",
		})
		assert.Equal(t, "BEGIN:VEVENT\nSUMMARY:Standup\nDESCRIPTION:Daily sync\nLOCATION:Room 4\nDTSTART:20261019T090000Z\nEND:VEVENT", got)
	})

	t.Run("absent fields render undefined", func(t *testing.T) {
		got := Event(EventFields{Summary: "Standup"})
		assert.Equal(t, "BEGIN:VEVENT\nSUMMARY:Standup\nDESCRIPTION:undefined\nLOCATION:undefined\nDTSTART:undefined\nEND:VEVENT", got)
	})
}
