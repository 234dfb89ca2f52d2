package ratelimit

import (
	"sync"
	"time"

	"github.com/samber/do"
)

const sweepInterval = time.Minute

type entry struct {
	count   int
	resetAt time.Time
}

type Decision struct {
	Allowed   bool
	Remaining int
}

// Service is a fixed-window admission counter shared by all endpoints.
// A new window starts the moment the previous one elapses, so a client
// can burst up to twice its limit across a window boundary. That is the
// documented behavior, not a defect.
type Service struct {
	mu        sync.Mutex
	entries   map[string]*entry
	lastSweep time.Time

	now func() time.Time
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		entries: map[string]*entry{},
		now:     time.Now,
	}, nil
}

func (s *Service) Admit(key string, limit int, window time.Duration) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeSweep(now)

	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		s.entries[key] = &entry{
			count:   1,
			resetAt: now.Add(window),
		}

		return Decision{Allowed: true, Remaining: limit - 1}
	}

	if e.count >= limit {
		return Decision{Allowed: false, Remaining: 0}
	}

	e.count++

	return Decision{Allowed: true, Remaining: limit - e.count}
}

// maybeSweep drops expired windows, at most once per sweepInterval so a
// busy process does not pay a full map scan on every admission.
func (s *Service) maybeSweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now

	for key, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, key)
		}
	}
}
