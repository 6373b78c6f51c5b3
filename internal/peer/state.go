package peer

import (
	"sync"
	"sync/atomic"
	"time"
)

// State is the authoritative membership table and Lamport clock shared by
// the heartbeat, broadcast, and listen loops of a Manager. All operations
// are safe to call concurrently from any goroutine.
type State struct {
	mu    sync.RWMutex
	table map[Addr]time.Time

	clock   atomic.Uint64
	running atomic.Bool
}

// NewState returns a State with an empty peer table, a zero Lamport clock,
// and its run flag set to true.
func NewState() *State {
	s := &State{table: make(map[Addr]time.Time)}
	s.running.Store(true)
	return s
}

// Join sets the peer's last-seen time to now. Idempotent; identical to
// Update.
func (s *State) Join(p Addr) { s.Update(p) }

// Update sets the peer's last-seen time to now.
func (s *State) Update(p Addr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[p] = time.Now().Truncate(time.Second)
}

// Leave removes a peer from the table. No-op if the peer is absent.
func (s *State) Leave(p Addr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.table, p)
}

// Peers returns a consistent point-in-time snapshot of the peer table,
// safe to range over without holding any lock.
func (s *State) Peers() map[Addr]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[Addr]time.Time, len(s.table))
	for addr, seen := range s.table {
		snapshot[addr] = seen
	}
	return snapshot
}

// Timestamp returns the current Lamport clock value.
func (s *State) Timestamp() uint64 { return s.clock.Load() }

// IncrementTimestamp advances the Lamport clock by one and returns the new
// value. Used before emitting a locally authored snippet (IR1).
func (s *State) IncrementTimestamp() uint64 { return s.clock.Add(1) }

// UpdateTimestamp advances the Lamport clock to max(clock, v). Used on
// snippet reception: the clock becomes max(clock, T) with no increment,
// per the classical Lamport receive rule.
func (s *State) UpdateTimestamp(v uint64) {
	for {
		cur := s.clock.Load()
		if v <= cur {
			return
		}
		if s.clock.CompareAndSwap(cur, v) {
			return
		}
	}
}

// IsRunning reports whether the run flag is still set.
func (s *State) IsRunning() bool { return s.running.Load() }

// Halt clears the run flag. Idempotent.
func (s *State) Halt() { s.running.Store(false) }
