package recovery

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harshvardhanchand/MediMind-sub001/identity"
	apperrors "github.com/harshvardhanchand/MediMind-sub001/internal/errors"
)

// State is the recovery flow's lifecycle position.
type State string

const (
	// StateIdle: no payload observed yet and no recovery session held.
	StateIdle State = "idle"

	// StateAwaitingLink: recovery was requested but the email link has not
	// been observed yet. Status.Message may carry a prompt or a provider
	// error to show alongside the "check your email" screen.
	StateAwaitingLink State = "awaiting_link"

	// StateExchanging: a payload was claimed and its code or token pair is
	// being redeemed with the provider.
	StateExchanging State = "exchanging"

	// StateAuthenticated: a recovery-scoped session is held; the password
	// update form may be submitted. Terminal until the update completes.
	StateAuthenticated State = "authenticated"

	// StateError: this link cannot proceed; the user must request a new
	// one. Terminal for the link.
	StateError State = "error"
)

// Status is a snapshot of the controller's state with its user-visible
// message, when any.
type Status struct {
	State   State
	Message string
}

// InProgress reports whether the flow currently owns navigation: either a
// redemption is running or a recovery session is established.
func (s Status) InProgress() bool {
	return s.State == StateExchanging || s.State == StateAuthenticated
}

// Controller owns the recovery handshake. The same physical link may be
// observed by more than one listener (the app-wide URL listener and a
// screen-local one); the controller claims each single-use code exactly once
// and every later observer converges on the claim's outcome instead of
// re-attempting the exchange.
type Controller struct {
	provider identity.Provider
	log      zerolog.Logger

	mu     sync.Mutex
	state  State
	msg    string
	// claims maps each observed code to its settled signal. Entries are
	// kept after settling so a code observed again later converges on the
	// recorded outcome instead of retrying a spent exchange.
	claims map[string]chan struct{}
	subs   []func(Status)
}

// ControllerOption modifies a Controller during construction.
type ControllerOption func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.log = l }
}

// NewController creates an idle Controller.
func NewController(provider identity.Provider, options ...ControllerOption) *Controller {
	c := &Controller{
		provider: provider,
		log:      zerolog.Nop(),
		state:    StateIdle,
		claims:   make(map[string]chan struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// AdoptExistingSession promotes the flow to Authenticated when the provider
// already holds an active session. This covers the race where the physical
// link was consumed by another listener before this observer got to it: the
// payload is spent, but the recovery session it bought is live. No-op once
// the flow is past Idle/AwaitingLink.
func (c *Controller) AdoptExistingSession(ctx context.Context) Status {
	c.mu.Lock()
	if c.state != StateIdle && c.state != StateAwaitingLink {
		status := Status{State: c.state, Message: c.msg}
		c.mu.Unlock()
		return status
	}
	c.mu.Unlock()

	session, err := c.provider.GetSession(ctx)
	if err != nil || session == nil {
		return c.Status()
	}

	c.mu.Lock()
	c.state = StateAuthenticated
	c.msg = ""
	c.notifyLocked()
	status := Status{State: c.state}
	c.mu.Unlock()
	return status
}

// Status returns the current state snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{State: c.state, Message: c.msg}
}

// Subscribe registers a state-change observer. The current status is
// delivered immediately.
func (c *Controller) Subscribe(fn func(Status)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	current := Status{State: c.state, Message: c.msg}
	c.mu.Unlock()
	fn(current)
}

// AwaitLink moves an idle flow to AwaitingLink (the "reset email sent"
// screen). The prompt is surfaced through Status.Message, typically the
// confirmation text or a provider error from the reset-email request. No-op
// once a payload has been observed.
func (c *Controller) AwaitLink(prompt string) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateAwaitingLink
	c.msg = prompt
	c.notifyLocked()
	c.mu.Unlock()
}

// ObserveURL parses a raw deep link and feeds any extracted payload into the
// flow. A recovery-shaped link that no longer carries a payload means some
// other listener already redeemed it, so the provider's session is adopted
// instead. Non-recovery URLs are ignored.
func (c *Controller) ObserveURL(ctx context.Context, raw string) Status {
	payload, err := ParseLink(raw)
	if err != nil {
		return c.Status()
	}
	if payload == nil {
		if IsRecoveryLink(raw) {
			return c.AdoptExistingSession(ctx)
		}
		return c.Status()
	}
	return c.Observe(ctx, payload)
}

// Observe runs the payload through the state machine:
//
//	error description present -> Error, no exchange attempted
//	PKCE code                 -> ExchangeCodeForSession
//	token pair + type=recovery -> SetSession
//	anything else             -> Error (invalid link format)
//
// Exchange failures are terminal for the link. Duplicate observations of a
// single-use code block until the first claim settles and then return its
// outcome; an already-Authenticated controller treats any further
// observation as converged success.
func (c *Controller) Observe(ctx context.Context, payload *Payload) Status {
	if payload == nil || payload.Empty() {
		return c.Status()
	}

	c.mu.Lock()
	if c.state == StateAuthenticated {
		c.mu.Unlock()
		return Status{State: StateAuthenticated}
	}

	if payload.ErrorDescription != "" {
		c.failLocked(payload.ErrorDescription)
		status := Status{State: c.state, Message: c.msg}
		c.mu.Unlock()
		return status
	}

	if payload.Code != "" {
		if settled, claimed := c.claims[payload.Code]; claimed {
			// Another observer owns this code. Wait for its outcome.
			c.mu.Unlock()
			select {
			case <-settled:
			case <-ctx.Done():
			}
			return c.converged(ctx)
		}
		settled := make(chan struct{})
		c.claims[payload.Code] = settled
		c.state = StateExchanging
		c.msg = ""
		c.notifyLocked()
		c.mu.Unlock()

		session, err := c.provider.ExchangeCodeForSession(ctx, payload.Code)
		return c.settle(settled, session, err)
	}

	if payload.HasTokenPair() && payload.Type == TypeRecovery {
		c.state = StateExchanging
		c.msg = ""
		c.notifyLocked()
		c.mu.Unlock()

		session, err := c.provider.SetSession(ctx, payload.AccessToken, payload.RefreshToken)
		return c.settle(nil, session, err)
	}

	c.log.Warn().Err(apperrors.ErrRecoveryLinkInvalid).Msg("recovery: payload matched no known encoding")
	c.failLocked(InvalidLinkFormatErr.Error())
	status := Status{State: c.state, Message: c.msg}
	c.mu.Unlock()
	return status
}

// UpdatePassword completes the flow. Requires Authenticated state; validates
// the confirmation and the minimum-length policy; on success signs out to
// invalidate the recovery-scoped session and resets to Idle. Failures leave
// the flow Authenticated so the user can retry.
func (c *Controller) UpdatePassword(ctx context.Context, newPassword, confirmPassword string) error {
	c.mu.Lock()
	if c.state != StateAuthenticated {
		c.mu.Unlock()
		return NotAuthenticatedErr
	}
	c.mu.Unlock()

	if newPassword != confirmPassword {
		return PasswordMismatchErr
	}
	if len(newPassword) < 6 {
		return PasswordTooShortErr
	}

	if err := c.provider.UpdateUser(ctx, identity.UserAttributes{Password: newPassword}); err != nil {
		c.log.Warn().Err(err).Msg("recovery: password update rejected by provider")
		return apperrors.Wrapf(apperrors.ErrPasswordUpdateFailed, "%s", err.Error())
	}

	// The recovery-scoped session must not survive the update; force a
	// fresh login with the new credential.
	if err := c.provider.SignOut(ctx); err != nil {
		c.log.Warn().Err(err).Msg("recovery: sign-out after password update failed")
	}

	c.mu.Lock()
	c.state = StateIdle
	c.msg = ""
	c.notifyLocked()
	c.mu.Unlock()
	return nil
}

// settle records the outcome of a redemption and wakes any waiting
// duplicate observers.
func (c *Controller) settle(settled chan struct{}, session *identity.Session, err error) Status {
	c.mu.Lock()
	if err != nil {
		c.log.Warn().Err(apperrors.Wrapf(apperrors.ErrRecoveryExchangeFailed, "%s", err.Error())).
			Msg("recovery: redemption failed")
		c.failLocked("This reset link is invalid or has expired. Please request a new one.")
	} else if session != nil {
		c.state = StateAuthenticated
		c.msg = ""
		c.notifyLocked()
	} else {
		c.failLocked("This reset link is invalid or has expired. Please request a new one.")
	}
	status := Status{State: c.state, Message: c.msg}
	c.mu.Unlock()

	if settled != nil {
		close(settled)
	}
	return status
}

// converged answers a duplicate observer after the owning claim settled. A
// failed first exchange may still leave the provider authenticated (the code
// was redeemed elsewhere), so the provider's session is the tie-breaker.
func (c *Controller) converged(ctx context.Context) Status {
	c.mu.Lock()
	state := c.state
	msg := c.msg
	c.mu.Unlock()
	if state == StateAuthenticated {
		return Status{State: StateAuthenticated}
	}
	if session, err := c.provider.GetSession(ctx); err == nil && session != nil {
		c.mu.Lock()
		c.state = StateAuthenticated
		c.msg = ""
		c.notifyLocked()
		status := Status{State: c.state}
		c.mu.Unlock()
		return status
	}
	return Status{State: state, Message: msg}
}

// failLocked must be called with the lock held.
func (c *Controller) failLocked(msg string) {
	c.state = StateError
	c.msg = msg
	c.notifyLocked()
}

// notifyLocked must be called with the lock held. Subscribers are invoked
// synchronously; they must not call back into the controller.
func (c *Controller) notifyLocked() {
	status := Status{State: c.state, Message: c.msg}
	for _, fn := range c.subs {
		fn(status)
	}
}
