package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/harshvardhanchand/MediMind-sub001/identity"
)

const (
	testUserID = "user-1"
	testEmail  = "john.doe@example.com"
)

func signedAccessToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestSessionFromTokens(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	access := signedAccessToken(t, jwt.MapClaims{
		"sub":   testUserID,
		"email": testEmail,
		"exp":   exp.Unix(),
	})

	session, err := identity.SessionFromTokens(access, "refresh-1")
	require.NoError(t, err)
	require.Equal(t, testUserID, session.Identity.ID)
	require.Equal(t, testEmail, session.Identity.Email)
	require.Equal(t, "refresh-1", session.RefreshToken)
	require.WithinDuration(t, exp, session.ExpiresAt, time.Second)
	require.False(t, session.Expired(time.Now()))
	require.True(t, session.Expired(exp.Add(time.Minute)))
}

func TestSessionFromTokensRejectsGarbage(t *testing.T) {
	_, err := identity.SessionFromTokens("", "refresh-1")
	require.Error(t, err)

	_, err = identity.SessionFromTokens("not-a-jwt", "refresh-1")
	require.Error(t, err)
}

func TestSessionFromTokensRequiresSubject(t *testing.T) {
	access := signedAccessToken(t, jwt.MapClaims{"email": testEmail})
	_, err := identity.SessionFromTokens(access, "refresh-1")
	require.Error(t, err)
}

func TestNilSessionIsExpired(t *testing.T) {
	var s *identity.Session
	require.True(t, s.Expired(time.Now()))
}
