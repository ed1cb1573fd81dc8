package jwtutil

import (
	"testing"

	"crm-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestConfig(t *testing.T, key string) {
	t.Helper()
	Initialize(&config.JWTConfig{SigningKey: key, ExpirationHours: 1})
	t.Cleanup(func() { jwtConfig = nil })
}

func TestGenerateAndValidateToken(t *testing.T) {
	initTestConfig(t, "test-signing-key")

	token, err := GenerateToken("ada@example.com", 7)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Nil(t, claims.TenantID)
}

func TestGenerateTokenWithTenant(t *testing.T) {
	initTestConfig(t, "test-signing-key")

	tenantID := uint(3)
	token, err := GenerateTokenWithTenant("ada@example.com", 7, &tenantID)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, uint(3), *claims.TenantID)
}

func TestValidateTokenWrongKey(t *testing.T) {
	initTestConfig(t, "key-one")
	token, err := GenerateToken("ada@example.com", 7)
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestUninitialized(t *testing.T) {
	jwtConfig = nil

	_, err := GenerateToken("ada@example.com", 7)
	assert.Error(t, err)

	_, err = ValidateToken("anything")
	assert.Error(t, err)
}
