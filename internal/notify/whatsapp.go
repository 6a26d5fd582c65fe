package notify

import (
	"net/url"
	"strings"
)

// WhatsAppLink builds a wa.me deep link that opens a chat with phone and the
// message pre-filled. Non-digits are stripped from phone.
func WhatsAppLink(phone, message string) string {
	return "https://wa.me/" + digitsOnly(phone) + "?text=" + encodeComponent(message)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// encodeComponent percent-encodes s for use as a single query value. Spaces
// become %20 so WhatsApp does not show literal plus signs.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
