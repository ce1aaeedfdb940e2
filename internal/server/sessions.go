package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/goliatone/go-orderform/pkg/form"
)

// sessions maps a visitor cookie to that visitor's controller. Entries expire
// after ttl of inactivity and the least recently used entry is evicted once
// capacity is reached.
type sessions struct {
	cache   *expirable.LRU[string, *form.Controller]
	factory func() *form.Controller
}

func newSessions(capacity int, ttl time.Duration, factory func() *form.Controller, onEvict func(string)) *sessions {
	var evict expirable.EvictCallback[string, *form.Controller]
	if onEvict != nil {
		evict = func(id string, _ *form.Controller) { onEvict(id) }
	}
	return &sessions{
		cache:   expirable.NewLRU[string, *form.Controller](capacity, evict, ttl),
		factory: factory,
	}
}

// lookup returns the controller for id, creating a new session when id is
// empty or unknown. The returned id is the one to hand back to the visitor.
func (s *sessions) lookup(id string) (string, *form.Controller, bool) {
	if id != "" {
		if controller, ok := s.cache.Get(id); ok {
			// Refresh the ttl.
			s.cache.Add(id, controller)
			return id, controller, false
		}
	}
	id = uuid.NewString()
	controller := s.factory()
	s.cache.Add(id, controller)
	return id, controller, true
}

func (s *sessions) len() int {
	return s.cache.Len()
}
