package utils

import (
	"net/mail"
	"strings"
)

// ExtractEmailAddress pulls the bare address out of values like
// "Jane Doe <jane@acme.com>". Falls back to the trimmed input when the
// header does not parse.
func ExtractEmailAddress(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return address
	}
	return strings.ToLower(parsed.Address)
}

func ExtractDomainFromEmail(email string) string {
	email = ExtractEmailAddress(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}
