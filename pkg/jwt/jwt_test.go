package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc, err := NewService("secret", "character-generator", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestService_RejectsBadTokens(t *testing.T) {
	svc, err := NewService("secret", "character-generator", time.Hour)
	require.NoError(t, err)
	other, err := NewService("other-secret", "character-generator", time.Hour)
	require.NoError(t, err)
	foreignIssuer, err := NewService("secret", "someone-else", time.Hour)
	require.NoError(t, err)

	forged, err := other.GenerateToken("user-1")
	require.NoError(t, err)
	wrongIssuer, err := foreignIssuer.GenerateToken("user-1")
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-token", forged, wrongIssuer} {
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestService_Expired(t *testing.T) {
	svc, err := NewService("secret", "", time.Minute)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService("", "", 0)
	assert.ErrorIs(t, err, ErrMissingSecret)
}
