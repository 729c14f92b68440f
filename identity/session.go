package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Identity holds the minimal identity record embedded in a provider-issued
// access token. Extended profile fields live elsewhere; an Identity is what
// the application still knows about the user when the profile backend is
// unreachable.
type Identity struct {
	ID    string `json:"id,omitempty"`    // Provider subject ("sub" claim)
	Email string `json:"email,omitempty"` // Email the session was issued for
}

// Session is the credential bundle proving an authenticated identity to the
// backend. The identity provider owns the tokens; everything else in this
// module holds a Session as a read-only reference and never mutates it.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"identity"`
}

// Expired reports whether the access token's lifetime has elapsed.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionFromTokens builds a Session from a raw token pair by reading the
// identity claims out of the access token. The token is parsed without
// signature verification: the backend verifies signatures on every request,
// this side only needs the embedded subject, email and expiry.
func SessionFromTokens(accessToken, refreshToken string) (*Session, error) {
	if accessToken == "" {
		return nil, errors.New("[SessionFromTokens] access token is empty")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, errors.Wrap(err, "[SessionFromTokens] parse access token")
	}

	session := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if sub, err := claims.GetSubject(); err == nil {
		session.Identity.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		session.Identity.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}
	if session.Identity.ID == "" {
		return nil, errors.New("[SessionFromTokens] access token has no subject claim")
	}
	return session, nil
}
