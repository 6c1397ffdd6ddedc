package cors

import "go.uber.org/atomic"

// Store publishes Policy snapshots to concurrent readers. Reload replaces
// the whole pointer atomically, so a reader sees either the entirely old
// or the entirely new policy, never a mix. There is no per-field locking
// because there is nothing to lock: policies are immutable.
type Store struct {
	policy atomic.Pointer[Policy]
}

// NewStore returns a Store initially holding p.
func NewStore(p *Policy) *Store {
	s := &Store{}
	s.policy.Store(p)
	return s
}

// Load returns the current snapshot.
func (s *Store) Load() *Policy {
	return s.policy.Load()
}

// Swap publishes p as the new snapshot. In-flight requests keep using
// whatever snapshot they already loaded.
func (s *Store) Swap(p *Policy) {
	s.policy.Store(p)
}
