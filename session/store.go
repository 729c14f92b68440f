// Package session owns the single source of truth for "am I signed in, and
// who am I": it bootstraps a session at cold start, consumes identity
// provider events in emission order, and reconciles provider identity with
// the fetched profile.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harshvardhanchand/MediMind-sub001/identity"
	apperrors "github.com/harshvardhanchand/MediMind-sub001/internal/errors"
	"github.com/harshvardhanchand/MediMind-sub001/profile"
	"github.com/harshvardhanchand/MediMind-sub001/user"
)

// DefaultBootstrapTimeout bounds the cold-start wait on the identity
// provider. When it elapses the store degrades to unauthenticated so the UI
// never hangs on a stalled provider.
const DefaultBootstrapTimeout = 15 * time.Second

// Snapshot is an immutable view of the store's state.
type Snapshot struct {
	Loading        bool              // true until bootstrap settles
	Session        *identity.Session // nil when signed out
	User           *user.User        // non-nil whenever Session is non-nil
	LoadingProfile bool              // profile fetch in flight for Session
	Restored       bool              // Session came from bootstrap, not a fresh sign-in
}

// Store reconciles provider events with profile fetches. It is safe for
// concurrent use; event handling is serialized by the provider's in-order
// delivery plus the store's mutex, and stale in-flight work is discarded via
// generation stamps rather than cancellation.
type Store struct {
	provider identity.Provider
	profiles profile.Service
	log      zerolog.Logger
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	loading        bool
	session        *identity.Session
	usr            *user.User
	loadingProfile bool
	restored       bool
	authGen        uint64 // bumped on every applied auth transition
	fetchGen       uint64 // bumped per profile fetch start
	subs           []func(Snapshot)

	unsubscribe func()
	wg          sync.WaitGroup
}

// Option modifies a Store during construction.
type Option func(*Store)

// WithBootstrapTimeout overrides the cold-start deadline.
func WithBootstrapTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithLogger sets the store's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates the store, subscribes to provider events and starts the
// bootstrap race. The store reports Loading until either the provider
// answers or the timeout wins.
func New(provider identity.Provider, profiles profile.Service, options ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		provider: provider,
		profiles: profiles,
		log:      zerolog.Nop(),
		timeout:  DefaultBootstrapTimeout,
		ctx:      ctx,
		cancel:   cancel,
		loading:  true,
	}
	for _, opt := range options {
		opt(s)
	}

	s.unsubscribe = provider.OnAuthStateChange(s.handleEvent)

	s.wg.Add(1)
	go s.bootstrap()
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a state observer and delivers the current snapshot
// immediately. Observers are invoked synchronously on every transition and
// must not call back into the store.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	current := s.snapshotLocked()
	s.mu.Unlock()
	fn(current)
}

// SignOut clears local state optimistically, then asks the provider to
// revoke the session. The provider's SignedOut event, when it arrives, is
// confirmation only: a provider-side failure is logged and reported but
// never blocks the local clear, so the user cannot be trapped signed in.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.clearLocked()
	s.notifyLocked()
	s.mu.Unlock()

	err := s.provider.SignOut(ctx)

	s.mu.Lock()
	s.loading = false
	s.notifyLocked()
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("session: provider sign-out failed, local state cleared anyway")
		return apperrors.Wrapf(apperrors.ErrSignOutFailed, "%s", err.Error())
	}
	return nil
}

// Close unsubscribes from the provider and stops in-flight work.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.cancel()
	s.wg.Wait()
}

// bootstrap races the provider's session lookup against the timeout. Winner
// takes all: a result arriving after the timer fired, or after any auth
// event was applied, is discarded so a stale session can never override
// newer event-driven state.
func (s *Store) bootstrap() {
	defer s.wg.Done()

	s.mu.Lock()
	startGen := s.authGen
	s.mu.Unlock()

	type result struct {
		session *identity.Session
		err     error
	}
	resultCh := make(chan result, 1)
	go func() {
		session, err := s.provider.GetSession(s.ctx)
		resultCh <- result{session: session, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		s.applyBootstrap(res.session, res.err, startGen)
	case <-timer.C:
		s.mu.Lock()
		if s.loading {
			s.loading = false
			s.notifyLocked()
		}
		s.mu.Unlock()
		s.log.Warn().Dur("timeout", s.timeout).Err(apperrors.ErrSessionFetchTimeout).
			Msg("session: bootstrap timed out, starting unauthenticated")
		// Drain the late result so the goroutine can finish; its session
		// lost the race and is dropped.
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			select {
			case res := <-resultCh:
				if res.session != nil {
					s.log.Debug().Msg("session: discarding bootstrap result that lost the timeout race")
				}
			case <-s.ctx.Done():
			}
		}()
	case <-s.ctx.Done():
	}
}

func (s *Store) applyBootstrap(session *identity.Session, err error, startGen uint64) {
	s.mu.Lock()
	if s.authGen != startGen {
		// An auth event was applied while the lookup was in flight; the
		// event-driven state is newer.
		s.mu.Unlock()
		s.log.Debug().Msg("session: discarding bootstrap result superseded by auth event")
		return
	}
	s.loading = false
	if err != nil || session == nil {
		s.notifyLocked()
		s.mu.Unlock()
		if err != nil {
			s.log.Warn().Err(err).Msg("session: bootstrap lookup failed, starting unauthenticated")
		}
		return
	}

	s.authGen++
	s.session = session
	s.usr = user.FromIdentity(session.Identity)
	s.restored = true
	fetchGen := s.startProfileFetchLocked()
	s.notifyLocked()
	s.mu.Unlock()

	s.fetchProfile(session, fetchGen)
}

// handleEvent consumes one provider event. The provider delivers events in
// emission order and one at a time; session state updates synchronously here
// while profile fetches run in the background under a generation guard.
func (s *Store) handleEvent(ev identity.Event) {
	var fetch *identity.Session
	var fetchGen uint64

	s.mu.Lock()
	switch ev.Type {
	case identity.SignedIn:
		if ev.Session == nil {
			s.mu.Unlock()
			return
		}
		s.authGen++
		s.loading = false
		s.session = ev.Session
		s.usr = user.FromIdentity(ev.Session.Identity)
		s.restored = false
		fetch = ev.Session
		fetchGen = s.startProfileFetchLocked()
	case identity.TokenRefreshed:
		if ev.Session == nil {
			s.mu.Unlock()
			return
		}
		// Rotated tokens, same identity: no profile refetch.
		s.authGen++
		s.session = ev.Session
		if s.usr == nil {
			s.usr = user.FromIdentity(ev.Session.Identity)
		}
	case identity.SignedOut:
		s.authGen++
		s.clearLocked()
	case identity.PasswordRecoveryRequested:
		// Owned by the recovery controller; nothing to reconcile here.
		s.mu.Unlock()
		return
	default:
		s.mu.Unlock()
		return
	}
	s.notifyLocked()
	s.mu.Unlock()

	s.log.Debug().Str("event", string(ev.Type)).Str("event_id", ev.ID).Msg("session: auth event applied")

	if fetch != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.fetchProfile(fetch, fetchGen)
		}()
	}
}

// fetchProfile resolves the profile for the given session. The result is
// applied only when the fetch generation is still current; a response for a
// superseded session is dropped on the floor.
func (s *Store) fetchProfile(session *identity.Session, gen uint64) {
	fields, err := s.profiles.CurrentProfile(s.ctx)

	s.mu.Lock()
	if gen != s.fetchGen || s.session == nil {
		s.mu.Unlock()
		s.log.Debug().Msg("session: discarding stale profile response")
		return
	}
	if err != nil {
		// Degrade to the provider's identity fields; the session stays
		// fully usable.
		s.usr = user.FromIdentity(session.Identity)
		s.loadingProfile = false
		s.notifyLocked()
		s.mu.Unlock()
		s.log.Warn().Err(apperrors.Wrapf(apperrors.ErrProfileFetchFailed, "%s", err.Error())).
			Msg("session: profile fetch failed, using provider identity only")
		return
	}
	s.usr = user.Merge(session.Identity, fields)
	s.loadingProfile = false
	s.notifyLocked()
	s.mu.Unlock()
}

// startProfileFetchLocked bumps the fetch generation and marks the profile
// as loading. Must be called with the lock held.
func (s *Store) startProfileFetchLocked() uint64 {
	s.fetchGen++
	s.loadingProfile = true
	return s.fetchGen
}

// clearLocked must be called with the lock held.
func (s *Store) clearLocked() {
	s.session = nil
	s.usr = nil
	s.loadingProfile = false
	s.restored = false
	s.fetchGen++ // invalidate any in-flight profile fetch
	s.authGen++
}

// snapshotLocked must be called with the lock held.
func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Loading:        s.loading,
		Session:        s.session,
		User:           s.usr,
		LoadingProfile: s.loadingProfile,
		Restored:       s.restored,
	}
}

// notifyLocked must be called with the lock held. Observers must not call
// back into the store.
func (s *Store) notifyLocked() {
	subs := s.subs
	snap := s.snapshotLocked()
	for _, fn := range subs {
		fn(snap)
	}
}
