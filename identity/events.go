package identity

import "github.com/google/uuid"

// EventType tags a provider-emitted auth state change.
type EventType string

const (
	// SignedIn indicates a new session was established (password login,
	// token-pair adoption or a completed code exchange).
	SignedIn EventType = "signed_in"

	// SignedOut indicates the provider invalidated the current session.
	SignedOut EventType = "signed_out"

	// TokenRefreshed indicates the session's token pair was rotated.
	// The identity behind the session is unchanged.
	TokenRefreshed EventType = "token_refreshed"

	// PasswordRecoveryRequested indicates the provider observed a
	// password-recovery handshake in progress.
	PasswordRecoveryRequested EventType = "password_recovery"
)

// Event is a single auth-state change emitted by a Provider. Events are
// delivered to each subscriber in emission order, exactly once per emission.
type Event struct {
	ID      string    // Unique per emission, for log correlation
	Type    EventType // What happened
	Session *Session  // New session when the event carries one, else nil
}

// NewEvent stamps an event with a fresh correlation ID.
func NewEvent(t EventType, session *Session) Event {
	return Event{ID: uuid.NewString(), Type: t, Session: session}
}
