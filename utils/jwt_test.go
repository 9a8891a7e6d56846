package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	token, err := GenerateToken(42, "staff")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "staff", claims.Role)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	ConfigureJWT("first-secret", time.Hour)
	token, err := GenerateToken(1, "admin")
	require.NoError(t, err)

	ConfigureJWT("second-secret", time.Hour)
	_, err = ParseToken(token)
	assert.Error(t, err)

	_, err = ParseToken("not-a-token")
	assert.Error(t, err)
}
