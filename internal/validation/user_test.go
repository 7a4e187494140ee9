package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("collector_01"))
	assert.NoError(t, ValidateUsername("ana-maria"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("has spaces"))
	assert.Error(t, ValidateUsername("way@too@odd"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("collector@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("CorrectHorse42"))
	assert.Error(t, ValidatePassword("short1A"))
	assert.Error(t, ValidatePassword("alllowercase123456"))
	assert.Error(t, ValidatePassword("ALLUPPERCASE123456"))
	assert.Error(t, ValidatePassword("NoDigitsHereAtAll"))
}
