package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	u := uuid.NewString()

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	got, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestJWT_DefaultTTL(t *testing.T) {
	require.Equal(t, DefaultAccessTTL, NewJWT("secret", 0).AccessTTL())
	require.Equal(t, time.Minute, NewJWT("secret", time.Minute).AccessTTL())
}

func TestJWT_EmptyUserID(t *testing.T) {
	_, err := NewJWT("secret", time.Hour).GenerateAccessToken("")
	require.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	access, err := NewJWT("secret", time.Hour).GenerateAccessToken("u1")
	require.NoError(t, err)

	_, err = NewJWT("other", time.Hour).ParseAccessToken(access)
	require.Error(t, err)
}

func TestJWT_ExpiryValidation(t *testing.T) {
	now := time.Now()
	j := NewJWT("secret", time.Minute)
	j.now = func() time.Time { return now }

	access, err := j.GenerateAccessToken("u1")
	require.NoError(t, err)
	_, err = j.ParseAccessToken(access)
	require.NoError(t, err)

	j.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = j.ParseAccessToken(access)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_RejectsOtherSigningMethod(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWT("secret", time.Hour).ParseAccessToken(s)
	require.Error(t, err)
}
