package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	payload := &Payload{
		ID:   "u1",
		Name: "Alice",
	}

	tokenString, err := GenerateToken(payload, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsed, err := ParseToken(tokenString, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "u1", parsed.ID)
	assert.Equal(t, "Alice", parsed.Name)
	assert.Equal(t, TokenIssuer, parsed.Issuer)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{ID: "u1"}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, "a-different-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{ID: "u1"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, testSecret)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}
