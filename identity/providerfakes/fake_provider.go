// Package providerfakes provides an in-memory identity.Provider for tests.
package providerfakes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/harshvardhanchand/MediMind-sub001/identity"
)

var _ identity.Provider = (*FakeProvider)(nil)

type fakeAccount struct {
	id           string
	email        string
	passwordHash []byte
}

// FakeProvider is a scripted identity backend: accounts with bcrypt password
// hashes, single-use exchange codes, event emission on demand, call counters
// and injectable failures and latency.
type FakeProvider struct {
	mu       sync.Mutex
	accounts map[string]*fakeAccount // keyed by email
	codes    map[string]*identity.Session
	used     map[string]bool // codes already redeemed
	current  *identity.Session
	subs     map[int]func(identity.Event)
	nextSub  int

	// Injectable behaviour.
	SessionErr    error         // returned by GetSession
	SessionDelay  time.Duration // slept before GetSession answers
	ExchangeErr   error         // returned by ExchangeCodeForSession
	SetSessionErr error         // returned by SetSession
	UpdateUserErr error         // returned by UpdateUser
	SignOutErr    error         // returned by SignOut

	// Call counters, read through the *Calls accessors.
	getSessionCalls int
	exchangeCalls   int
	setSessionCalls int
	updateUserCalls int
	signOutCalls    int
}

func (p *FakeProvider) GetSessionCalls() int { p.mu.Lock(); defer p.mu.Unlock(); return p.getSessionCalls }
func (p *FakeProvider) ExchangeCalls() int   { p.mu.Lock(); defer p.mu.Unlock(); return p.exchangeCalls }
func (p *FakeProvider) SetSessionCalls() int { p.mu.Lock(); defer p.mu.Unlock(); return p.setSessionCalls }
func (p *FakeProvider) UpdateUserCalls() int { p.mu.Lock(); defer p.mu.Unlock(); return p.updateUserCalls }
func (p *FakeProvider) SignOutCalls() int    { p.mu.Lock(); defer p.mu.Unlock(); return p.signOutCalls }

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		accounts: make(map[string]*fakeAccount),
		codes:    make(map[string]*identity.Session),
		used:     make(map[string]bool),
		subs:     make(map[int]func(identity.Event)),
	}
}

// RegisterUser adds an account, hashing the password the way a real backend
// would store it.
func (p *FakeProvider) RegisterUser(email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	id := uuid.NewString()
	p.accounts[email] = &fakeAccount{id: id, email: email, passwordHash: hash}
	return id, nil
}

// IssueSession fabricates a session for a registered account without going
// through a grant.
func (p *FakeProvider) IssueSession(email string) *identity.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.accounts[email]
	if !ok {
		acct = &fakeAccount{id: uuid.NewString(), email: email}
		p.accounts[email] = acct
	}
	return &identity.Session{
		AccessToken:  "at-" + uuid.NewString(),
		RefreshToken: "rt-" + uuid.NewString(),
		ExpiresAt:    time.Now().Add(time.Hour),
		Identity:     identity.Identity{ID: acct.id, Email: acct.email},
	}
}

// SetCurrent seeds the provider's current session (a pre-existing signed-in
// state at cold start).
func (p *FakeProvider) SetCurrent(session *identity.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = session
}

// AddCode registers a single-use exchange code redeemable for the given
// session.
func (p *FakeProvider) AddCode(code string, session *identity.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes[code] = session
}

// Emit delivers an event to all subscribers, tracking the provider's current
// session the way a real backend's listener would observe it.
func (p *FakeProvider) Emit(ev identity.Event) {
	p.mu.Lock()
	switch ev.Type {
	case identity.SignedIn, identity.TokenRefreshed:
		p.current = ev.Session
	case identity.SignedOut:
		p.current = nil
	}
	fns := p.subscribers()
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (p *FakeProvider) GetSession(ctx context.Context) (*identity.Session, error) {
	p.mu.Lock()
	delay := p.SessionDelay
	p.getSessionCalls++
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SessionErr != nil {
		return nil, p.SessionErr
	}
	return p.current, nil
}

func (p *FakeProvider) SignInWithPassword(_ context.Context, email, password string) (*identity.Session, error) {
	p.mu.Lock()
	acct, ok := p.accounts[email]
	p.mu.Unlock()
	if !ok {
		return nil, identity.InvalidCredentialsErr
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return nil, identity.InvalidCredentialsErr
	}

	session := p.IssueSession(email)
	p.Emit(identity.NewEvent(identity.SignedIn, session))
	return session, nil
}

func (p *FakeProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.signOutCalls++
	err := p.SignOutErr
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.Emit(identity.NewEvent(identity.SignedOut, nil))
	return nil
}

func (p *FakeProvider) SetSession(_ context.Context, accessToken, refreshToken string) (*identity.Session, error) {
	p.mu.Lock()
	p.setSessionCalls++
	err := p.SetSessionErr
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if accessToken == "" || refreshToken == "" {
		return nil, identity.InvalidTokenPairErr
	}

	session := &identity.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Hour),
		Identity:     identity.Identity{ID: uuid.NewString()},
	}
	p.Emit(identity.NewEvent(identity.SignedIn, session))
	return session, nil
}

func (p *FakeProvider) ExchangeCodeForSession(_ context.Context, code string) (*identity.Session, error) {
	p.mu.Lock()
	p.exchangeCalls++
	if p.ExchangeErr != nil {
		err := p.ExchangeErr
		p.mu.Unlock()
		return nil, err
	}
	if p.used[code] {
		p.mu.Unlock()
		return nil, identity.CodeAlreadyUsedErr
	}
	session, ok := p.codes[code]
	if !ok {
		p.mu.Unlock()
		return nil, identity.InvalidCodeErr
	}
	p.used[code] = true
	p.mu.Unlock()

	p.Emit(identity.NewEvent(identity.SignedIn, session))
	return session, nil
}

func (p *FakeProvider) UpdateUser(_ context.Context, attrs identity.UserAttributes) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateUserCalls++
	if p.UpdateUserErr != nil {
		return p.UpdateUserErr
	}
	if p.current == nil {
		return identity.NoSessionErr
	}
	if attrs.Password != "" {
		if acct, ok := p.accounts[p.current.Identity.Email]; ok {
			hash, err := bcrypt.GenerateFromPassword([]byte(attrs.Password), bcrypt.MinCost)
			if err != nil {
				return errors.Wrap(err, "hash password")
			}
			acct.passwordHash = hash
		}
	}
	return nil
}

func (p *FakeProvider) OnAuthStateChange(fn func(identity.Event)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// subscribers must be called with the lock held.
func (p *FakeProvider) subscribers() []func(identity.Event) {
	fns := make([]func(identity.Event), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	return fns
}
