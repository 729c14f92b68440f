// Package deeplink owns the process-wide incoming-URL subscription. The OS
// delivers a deep link once; this service is the single place that hooks the
// OS listener and fans the URL out to every interested component, so nothing
// else ever registers with the OS directly.
package deeplink

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	AlreadyAttachedErr = errors.New("deep link hook already attached")
	ListenerClosedErr  = errors.New("deep link listener closed")
)

// Hook bridges the OS-level URL callback. It receives the listener's emit
// function and returns a teardown that detaches the OS callback.
type Hook func(emit func(url string)) (teardown func(), err error)

// Listener is constructed exactly once at app start and closed at shutdown.
// Attach registers the OS hook; a second Attach is an error rather than a
// silent duplicate registration.
type Listener struct {
	log zerolog.Logger

	mu       sync.Mutex
	subs     map[int]func(string)
	nextSub  int
	teardown func()
	attached bool
	closed   bool
	lastURL  string
}

// NewListener creates an unattached listener.
func NewListener(log zerolog.Logger) *Listener {
	return &Listener{log: log, subs: make(map[int]func(string))}
}

// Attach registers the OS hook. Exactly one Attach may succeed per Listener.
func (l *Listener) Attach(hook Hook) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ListenerClosedErr
	}
	if l.attached {
		l.mu.Unlock()
		return AlreadyAttachedErr
	}
	l.attached = true
	l.mu.Unlock()

	teardown, err := hook(l.Emit)
	if err != nil {
		l.mu.Lock()
		l.attached = false
		l.mu.Unlock()
		return errors.Wrap(err, "[deeplink.Attach]")
	}

	l.mu.Lock()
	l.teardown = teardown
	l.mu.Unlock()
	return nil
}

// Subscribe registers a URL consumer and returns its unsubscribe function.
// A URL that arrived before the subscription is replayed immediately, in
// case the OS delivered the link before the consumer mounted.
func (l *Listener) Subscribe(fn func(url string)) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	replay := l.lastURL
	l.mu.Unlock()

	if replay != "" {
		fn(replay)
	}

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Emit delivers a URL to all subscribers. The OS hook calls this; tests call
// it directly.
func (l *Listener) Emit(url string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.lastURL = url
	fns := make([]func(string), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	l.log.Debug().Str("url", url).Msg("deep link received")
	for _, fn := range fns {
		fn(url)
	}
}

// Close detaches the OS hook and drops all subscribers. Further Emits are
// no-ops.
func (l *Listener) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	teardown := l.teardown
	l.teardown = nil
	l.subs = make(map[int]func(string))
	l.mu.Unlock()

	if teardown != nil {
		teardown()
	}
}
