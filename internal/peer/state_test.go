package peer

import (
	"testing"
	"time"
)

func TestIncrementTimestampMonotonic(t *testing.T) {
	s := NewState()
	prev := s.Timestamp()
	for i := 0; i < 50; i++ {
		ts := s.IncrementTimestamp()
		if ts <= prev {
			t.Fatalf("IncrementTimestamp %d: got %d, want > %d", i, ts, prev)
		}
		prev = ts
	}
}

func TestIncrementTimestampStartsAtOne(t *testing.T) {
	s := NewState()
	if v := s.Timestamp(); v != 0 {
		t.Fatalf("new state: got %d, want 0", v)
	}
	if ts := s.IncrementTimestamp(); ts != 1 {
		t.Fatalf("first increment: got %d, want 1", ts)
	}
}

func TestUpdateTimestampMaxRule(t *testing.T) {
	s := NewState()
	s.IncrementTimestamp() // clock = 1
	s.IncrementTimestamp() // clock = 2

	s.UpdateTimestamp(10)
	if got := s.Timestamp(); got != 10 {
		t.Fatalf("UpdateTimestamp(10) from 2: got %d, want 10", got)
	}

	// A lower or equal timestamp must never move the clock backwards.
	s.UpdateTimestamp(3)
	if got := s.Timestamp(); got != 10 {
		t.Fatalf("UpdateTimestamp(3) from 10: got %d, want 10 (unchanged)", got)
	}

	// Receive rule: max(clock, T), no increment on receive (spec Q2).
	s.UpdateTimestamp(10)
	if got := s.Timestamp(); got != 10 {
		t.Fatalf("UpdateTimestamp(10) from 10: got %d, want 10 (no increment on receive)", got)
	}
}

func TestJoinUpdateLeave(t *testing.T) {
	s := NewState()
	a := Addr{Host: "127.0.0.1", Port: 9000}

	s.Join(a)
	peers := s.Peers()
	if _, ok := peers[a]; !ok {
		t.Fatalf("Join: %v not present in table", a)
	}

	s.Leave(a)
	peers = s.Peers()
	if _, ok := peers[a]; ok {
		t.Fatalf("Leave: %v still present in table", a)
	}

	// Leave on an absent peer is a no-op.
	s.Leave(a)
}

func TestPeersSnapshotIsIndependentCopy(t *testing.T) {
	s := NewState()
	a := Addr{Host: "10.0.0.1", Port: 1234}
	s.Join(a)

	snapshot := s.Peers()
	delete(snapshot, a)

	if _, ok := s.Peers()[a]; !ok {
		t.Fatal("mutating a snapshot must not affect the underlying table")
	}
}

func TestHaltClearsRunFlagOnce(t *testing.T) {
	s := NewState()
	if !s.IsRunning() {
		t.Fatal("new state must start running")
	}
	s.Halt()
	if s.IsRunning() {
		t.Fatal("Halt must clear the run flag")
	}
	s.Halt() // idempotent
	if s.IsRunning() {
		t.Fatal("Halt must remain false after a second call")
	}
}

func TestUpdateSetsLastSeenToNow(t *testing.T) {
	s := NewState()
	a := Addr{Host: "127.0.0.1", Port: 9001}
	before := time.Now().Truncate(time.Second)
	s.Update(a)
	after := time.Now().Truncate(time.Second).Add(time.Second)

	seen := s.Peers()[a]
	if seen.Before(before) || seen.After(after) {
		t.Fatalf("Update: last_seen %v not within [%v, %v]", seen, before, after)
	}
}
