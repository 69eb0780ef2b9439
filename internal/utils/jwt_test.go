package utils

import (
	"testing"
	"time"

	"ratesvc/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(TokenOptions{
		Secret:  "test-secret",
		Issuer:  "rates-api",
		TTL:     time.Hour,
		Address: "owner",
		Role:    models.RoleOperator,
	})
	require.NoError(t, err)

	claims, err := ParseToken("test-secret", "rates-api", token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Address)
	assert.Equal(t, "rates-api", claims.Issuer)
	assert.True(t, claims.HasPermission(models.PermissionRatesWrite))

	_, err = ParseToken("other-secret", "rates-api", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(TokenOptions{
		Secret:  "test-secret",
		TTL:     time.Minute,
		Address: "owner",
		Now:     time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = ParseToken("test-secret", "rates-api", token)
	assert.Error(t, err)
}

func TestGenerateToken_RequiresSecretAndAddress(t *testing.T) {
	_, err := GenerateToken(TokenOptions{Address: "owner"})
	assert.Error(t, err)

	_, err = GenerateToken(TokenOptions{Secret: "s"})
	assert.Error(t, err)
}

func TestDefaultPermissions(t *testing.T) {
	token, err := GenerateToken(TokenOptions{Secret: "s", TTL: time.Hour, Address: "viewer"})
	require.NoError(t, err)

	claims, err := ParseToken("s", "", token)
	require.NoError(t, err)
	assert.True(t, claims.HasPermission(models.PermissionRatesRead))
	assert.False(t, claims.HasPermission(models.PermissionRatesWrite))
}

func TestParseToken_Issuer(t *testing.T) {
	token, err := GenerateToken(TokenOptions{
		Secret:  "test-secret",
		Issuer:  "someone-else",
		TTL:     time.Hour,
		Address: "owner",
		Role:    models.RoleOperator,
	})
	require.NoError(t, err)

	_, err = ParseToken("test-secret", "rates-api", token)
	assert.Error(t, err)

	claims, err := ParseToken("test-secret", "someone-else", token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Address)
}
