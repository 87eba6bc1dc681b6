// Package scheduler provides one-shot wall-clock timers keyed by giveaway
// message ID. Timers are not persisted; the lifecycle engine rebuilds them
// from the store on startup, so Register is idempotent and cheap.
package scheduler

import (
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Callback is invoked with the key the timer was registered under.
type Callback func(key string)

type entry struct {
	timer *time.Timer
}

// Scheduler owns a private key -> timer table. Registering an existing key
// replaces the previous timer instead of duplicating it.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*entry
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Scheduler using the wall clock
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		timers: make(map[string]*entry),
		now:    time.Now,
		logger: logger,
	}
}

// Register arms a one-shot timer that invokes callback(key) at or after
// fireAt. A fireAt in the past fires as soon as practicable. The timer entry
// stays registered while the callback runs, so a callback that probes
// Cancel(key) still finds it.
func (s *Scheduler) Register(key string, fireAt time.Time, callback Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[key]; ok {
		prev.timer.Stop()
	}

	e := &entry{}
	s.timers[key] = e

	delay := fireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	e.timer = time.AfterFunc(delay, func() {
		s.fire(key, e, callback)
	})
}

// Cancel disarms the timer for key if one exists. It reports whether a timer
// was found; cancelling an absent, already-fired or already-cancelled key is
// a no-op.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timers[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.timers, key)
	return true
}

// Pending returns the number of armed timers
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms every timer. Used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, key)
	}
}

func (s *Scheduler) fire(key string, e *entry, callback Callback) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduler callback panicked", "key", key, "panic", r)
		}
		// Drop the entry unless the callback cancelled it or a newer timer
		// replaced it while we were running.
		s.mu.Lock()
		if cur, ok := s.timers[key]; ok && cur == e {
			delete(s.timers, key)
		}
		s.mu.Unlock()
	}()

	callback(key)
}
