package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmailAddress(t *testing.T) {
	assert.Equal(t, "jane@acme.com", ExtractEmailAddress("Jane Doe <Jane@Acme.com>"))
	assert.Equal(t, "jane@acme.com", ExtractEmailAddress("jane@acme.com"))
	assert.Equal(t, "jane@acme.com", ExtractEmailAddress("  jane@acme.com  "))
	assert.Equal(t, "", ExtractEmailAddress(""))
	assert.Equal(t, "not an address", ExtractEmailAddress("not an address"))
}

func TestExtractDomainFromEmail(t *testing.T) {
	assert.Equal(t, "acme.com", ExtractDomainFromEmail("Jane Doe <jane@Acme.com>"))
	assert.Equal(t, "acme.com", ExtractDomainFromEmail("jane@acme.com"))
	assert.Equal(t, "", ExtractDomainFromEmail("no-at-sign"))
	assert.Equal(t, "", ExtractDomainFromEmail(""))
}
