package navigation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harshvardhanchand/MediMind-sub001/recovery"
	"github.com/harshvardhanchand/MediMind-sub001/session"
)

// Gate watches the session store and the recovery controller and publishes
// the derived branch. It also applies the restart policy: a session restored
// at cold start with an incomplete profile and no recovery in progress is
// signed out rather than left stranded between onboarding states.
type Gate struct {
	store *session.Store
	flow  *recovery.Controller
	log   zerolog.Logger

	mu             sync.Mutex
	sessionState   session.Snapshot
	recoveryState  recovery.Status
	branch         Branch
	subs           []func(Branch)
	restartHandled bool
	started        bool
}

// GateOption modifies a Gate during construction.
type GateOption func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(l zerolog.Logger) GateOption {
	return func(g *Gate) { g.log = l }
}

// NewGate creates an unstarted Gate.
func NewGate(store *session.Store, flow *recovery.Controller, options ...GateOption) *Gate {
	g := &Gate{
		store:  store,
		flow:   flow,
		log:    zerolog.Nop(),
		branch: BranchSplash,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Start subscribes to both inputs and begins publishing branches. Call once.
func (g *Gate) Start() {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return
	}
	g.started = true
	g.mu.Unlock()

	g.store.Subscribe(func(snap session.Snapshot) {
		g.mu.Lock()
		g.sessionState = snap
		g.recomputeLocked()
		g.mu.Unlock()
	})
	g.flow.Subscribe(func(st recovery.Status) {
		g.mu.Lock()
		g.recoveryState = st
		g.recomputeLocked()
		g.mu.Unlock()
	})
}

// Branch returns the current branch.
func (g *Gate) Branch() Branch {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.branch
}

// Subscribe registers a branch observer; the current branch is delivered
// immediately.
func (g *Gate) Subscribe(fn func(Branch)) {
	g.mu.Lock()
	g.subs = append(g.subs, fn)
	current := g.branch
	g.mu.Unlock()
	fn(current)
}

// recomputeLocked must be called with the lock held.
func (g *Gate) recomputeLocked() {
	in := Inputs{
		Loading:        g.sessionState.Loading,
		HasSession:     g.sessionState.Session != nil,
		HasProfileName: g.sessionState.User.HasCompletedProfile(),
		Recovery:       g.recoveryState,
	}
	next := Resolve(in)

	g.maybeForceSignOutLocked(in)

	if next == g.branch {
		return
	}
	g.log.Info().Str("from", string(g.branch)).Str("to", string(next)).Msg("navigation: branch change")
	g.branch = next
	for _, fn := range g.subs {
		fn(next)
	}
}

// maybeForceSignOutLocked applies the restart policy once per process: a
// bootstrap-restored session whose profile never completed, with recovery
// idle, is signed out so the user restarts from a clean login instead of a
// half-initialized onboarding. The sign-out runs on its own goroutine; this
// is called from inside store notifications and calling back synchronously
// would deadlock.
func (g *Gate) maybeForceSignOutLocked(in Inputs) {
	if g.restartHandled {
		return
	}
	snap := g.sessionState
	if snap.Loading || snap.LoadingProfile {
		return
	}
	g.restartHandled = true

	if snap.Restored && in.HasSession && !in.HasProfileName && !g.recoveryState.InProgress() {
		g.log.Warn().Msg("navigation: restored session with incomplete profile, forcing sign-out")
		go func() {
			_ = g.store.SignOut(context.Background())
		}()
	}
}
