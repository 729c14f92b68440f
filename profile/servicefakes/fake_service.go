// Package servicefakes provides an in-memory profile.Service for tests.
package servicefakes

import (
	"context"
	"sync"
	"time"

	"github.com/harshvardhanchand/MediMind-sub001/profile"
)

var _ profile.Service = (*FakeService)(nil)

// FakeService returns a programmable profile, with optional latency and a
// call counter so tests can assert fetch-once behaviour.
type FakeService struct {
	mu     sync.Mutex
	fields *profile.Fields
	err    error
	delay  time.Duration
	calls  int
}

func NewFakeService() *FakeService {
	return &FakeService{}
}

// Returns sets the response for subsequent fetches.
func (s *FakeService) Returns(fields *profile.Fields, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = fields
	s.err = err
}

// Delay makes each fetch sleep before answering.
func (s *FakeService) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls reports how many fetches were issued.
func (s *FakeService) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *FakeService) CurrentProfile(ctx context.Context) (*profile.Fields, error) {
	s.mu.Lock()
	s.calls++
	fields, err, delay := s.fields, s.err, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return &profile.Fields{}, nil
	}
	cp := *fields
	return &cp, nil
}
