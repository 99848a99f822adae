package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("lab-dashboard", time.Hour, "s3cret")
	require.NoError(t, err)

	claims, err := ValidateToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "lab-dashboard", claims.Subject)
}

func TestValidateTokenRejects(t *testing.T) {
	good, err := GenerateToken("lab", time.Hour, "s3cret")
	require.NoError(t, err)
	expired, err := GenerateToken("lab", -time.Minute, "s3cret")
	require.NoError(t, err)

	_, err = ValidateToken(good, "other")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = ValidateToken(expired, "s3cret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "lab"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken(none, "s3cret")
	assert.Error(t, err)

	_, err = ValidateToken(good, "")
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = GenerateToken("lab", time.Hour, "")
	assert.ErrorIs(t, err, ErrNoSecret)
}
