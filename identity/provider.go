package identity

import "context"

// UserAttributes carries the mutable account fields accepted by
// Provider.UpdateUser. Empty fields are left untouched.
type UserAttributes struct {
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Provider is the external identity backend: it issues sessions, validates
// credentials, redeems recovery codes and token pairs, and emits auth-state
// changes. Implementations must deliver events to each subscriber in
// emission order.
type Provider interface {
	// GetSession returns the currently held session, or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)

	// SignInWithPassword validates credentials and establishes a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignOut invalidates the current session on the provider side.
	SignOut(ctx context.Context) error

	// SetSession adopts an externally supplied token pair (typically
	// extracted from a recovery deep link) as the current session.
	SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error)

	// ExchangeCodeForSession redeems a single-use PKCE authorization code.
	// A second redemption of the same code fails on the provider side.
	ExchangeCodeForSession(ctx context.Context, code string) (*Session, error)

	// UpdateUser applies account changes to the authenticated user.
	UpdateUser(ctx context.Context, attrs UserAttributes) error

	// OnAuthStateChange registers a subscriber for auth events and returns
	// its unsubscribe function.
	OnAuthStateChange(fn func(Event)) (unsubscribe func())
}
