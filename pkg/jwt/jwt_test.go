package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waveline/backstage/pkg/errcode"
)

const testSecret = "unit-test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(42, 1, testSecret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountId)
	assert.Equal(t, 1, claims.PlatformId)
	assert.Equal(t, "backstage", claims.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(42, 1, testSecret, 24)
	require.NoError(t, err)

	_, err = ParseToken(token, "another-secret")
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken(42, 1, testSecret, -1)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestValidateTokenMismatch(t *testing.T) {
	token, err := GenerateToken(42, 1, testSecret, 24)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret, 42, 1)
	assert.NoError(t, err)

	_, err = ValidateToken(token, testSecret, 43, 1)
	assert.ErrorIs(t, err, errcode.ErrTokenMismatch)

	_, err = ValidateToken(token, testSecret, 42, 2)
	assert.ErrorIs(t, err, errcode.ErrTokenMismatch)
}
