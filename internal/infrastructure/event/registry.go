package event

import (
	"slices"
	"sync"

	"github.com/landerp/backend/internal/domain/shared"
)

// subscriptions maps event types to handlers. Handlers added without types
// see every event and run after the typed ones.
type subscriptions struct {
	mu    sync.RWMutex
	typed map[string][]shared.EventHandler
	all   []shared.EventHandler
}

func newSubscriptions() *subscriptions {
	return &subscriptions{typed: make(map[string][]shared.EventHandler)}
}

// add is idempotent per (handler, type)
func (s *subscriptions) add(handler shared.EventHandler, eventTypes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(eventTypes) == 0 {
		if !slices.Contains(s.all, handler) {
			s.all = append(s.all, handler)
		}
		return
	}
	for _, t := range eventTypes {
		if !slices.Contains(s.typed[t], handler) {
			s.typed[t] = append(s.typed[t], handler)
		}
	}
}

func (s *subscriptions) remove(handler shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match := func(h shared.EventHandler) bool { return h == handler }
	s.all = slices.DeleteFunc(s.all, match)
	for t, hs := range s.typed {
		if hs = slices.DeleteFunc(hs, match); len(hs) == 0 {
			delete(s.typed, t)
		} else {
			s.typed[t] = hs
		}
	}
}

// forType returns a snapshot safe to iterate without the lock
func (s *subscriptions) forType(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Concat(s.typed[eventType], s.all)
}

// count is the number of distinct handlers
func (s *subscriptions) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[shared.EventHandler]struct{})
	for _, h := range s.all {
		seen[h] = struct{}{}
	}
	for _, hs := range s.typed {
		for _, h := range hs {
			seen[h] = struct{}{}
		}
	}
	return len(seen)
}
