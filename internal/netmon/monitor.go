// Package netmon reports network reachability and its transitions.
package netmon

import (
	"sync"
)

// Monitor exposes the current connectivity state and a stream of changes.
type Monitor interface {
	// Online reports the last observed connectivity state.
	Online() bool

	// Subscribe returns a channel that receives the new state on every
	// transition, and a function that cancels the subscription. A slow
	// subscriber only ever sees the latest state.
	Subscribe() (<-chan bool, func())
}

// state tracks the connectivity flag and fans transitions out to subscribers.
type state struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]chan bool
}

func newState(online bool) *state {
	return &state{
		online: online,
		subs:   make(map[int]chan bool),
	}
}

func (s *state) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *state) Subscribe() (<-chan bool, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan bool, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}

	return ch, cancel
}

// set records online and notifies subscribers. It reports whether the
// state changed.
func (s *state) set(online bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online == online {
		return false
	}
	s.online = online

	for _, ch := range s.subs {
		select {
		case ch <- online:
		default:
			// Replace the undelivered value with the latest one.
			select {
			case <-ch:
			default:
			}
			ch <- online
		}
	}

	return true
}

// Manual is a Monitor whose state is set explicitly. It backs the CLI
// --offline flag and tests.
type Manual struct {
	*state
}

// NewManual creates a Manual monitor with the given initial state.
func NewManual(online bool) *Manual {
	return &Manual{state: newState(online)}
}

// Set changes the connectivity state, notifying subscribers on transitions.
func (m *Manual) Set(online bool) {
	m.set(online)
}
