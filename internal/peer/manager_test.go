package peer

import (
	"testing"
	"time"

	"github.com/MicahPeacock/snipgossip/internal/ioqueue"
)

// newTestManager starts a Manager bound to 127.0.0.1:port, seeded with
// bootstrap so the pair can gossip over real loopback sockets.
func newTestManager(t *testing.T, port int, bootstrapPeers []Addr) (*Manager, *ioqueue.Queue) {
	t.Helper()
	self := Addr{Host: "127.0.0.1", Port: port}
	q := ioqueue.New()
	m, err := NewManager(self, "test-bootstrap", bootstrapPeers, q, false, nil)
	if err != nil {
		t.Fatalf("NewManager(%s): %v", self, err)
	}
	return m, q
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

// TestSnippetDeliveryBetweenTwoNodes exercises T5: a snippet authored on
// one node is delivered at most once to the other, carrying a Lamport
// timestamp advanced by the send.
func TestSnippetDeliveryBetweenTwoNodes(t *testing.T) {
	a := Addr{Host: "127.0.0.1", Port: 19101}
	b := Addr{Host: "127.0.0.1", Port: 19102}

	mgrA, qA := newTestManager(t, a.Port, []Addr{b})
	mgrB, qB := newTestManager(t, b.Port, []Addr{a})
	defer mgrA.conn.Close()
	defer mgrB.conn.Close()

	go mgrA.Run()
	go mgrB.Run()

	qA.PutOutgoing("hello from a")

	waitFor(t, 2*time.Second, qB.HasIncoming)

	msg := qB.PopIncoming()
	if msg.Text != "hello from a" {
		t.Fatalf("delivered text: got %q, want %q", msg.Text, "hello from a")
	}
	if msg.Sender != a.String() {
		t.Fatalf("sender: got %q, want %q", msg.Sender, a.String())
	}
	if msg.Timestamp == 0 {
		t.Fatal("delivered snippet carries a zero Lamport timestamp")
	}

	if qB.HasIncoming() {
		t.Fatal("snippet delivered more than once")
	}

	if err := mgrA.SelfStop(); err != nil {
		t.Fatalf("SelfStop(a): %v", err)
	}
	if err := mgrB.SelfStop(); err != nil {
		t.Fatalf("SelfStop(b): %v", err)
	}
}

// TestHeartbeatsRefreshLastSeen exercises peer-set freshness (T3): a
// heartbeat received from an already-known peer pushes that peer's
// last-seen time forward, which is what keeps it from being pruned.
func TestHeartbeatsRefreshLastSeen(t *testing.T) {
	a := Addr{Host: "127.0.0.1", Port: 19201}
	b := Addr{Host: "127.0.0.1", Port: 19202}

	mgrA, _ := newTestManager(t, a.Port, []Addr{b})
	mgrB, _ := newTestManager(t, b.Port, []Addr{a})
	defer mgrA.conn.Close()
	defer mgrB.conn.Close()

	go mgrA.listenLoop()
	go mgrB.listenLoop()

	before := mgrB.state.Peers()[a]
	time.Sleep(1100 * time.Millisecond) // last-seen is truncated to the second

	mgrA.sendHeartbeats()

	waitFor(t, time.Second, func() bool {
		return mgrB.state.Peers()[a].After(before)
	})

	if err := mgrA.SelfStop(); err != nil {
		t.Fatalf("SelfStop(a): %v", err)
	}
	if err := mgrB.SelfStop(); err != nil {
		t.Fatalf("SelfStop(b): %v", err)
	}
}

// TestSelfStopUnblocksListenLoop exercises T7: a single node's Run returns
// promptly once it receives its own "stop" request, and does not leak the
// listen goroutine past Run's return.
func TestSelfStopUnblocksListenLoop(t *testing.T) {
	a := Addr{Host: "127.0.0.1", Port: 19301}
	mgr, _ := newTestManager(t, a.Port, nil)
	defer mgr.conn.Close()

	doneCh := make(chan error, 1)
	go func() { doneCh <- mgr.Run() }()

	time.Sleep(50 * time.Millisecond)
	if err := mgr.SelfStop(); err != nil {
		t.Fatalf("SelfStop: %v", err)
	}

	select {
	case err := <-doneCh:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after SelfStop")
	}

	if mgr.state.IsRunning() {
		t.Fatal("run flag still set after Run returned")
	}
}

func TestManagerPeersExcludesSelf(t *testing.T) {
	a := Addr{Host: "127.0.0.1", Port: 19401}
	b := Addr{Host: "127.0.0.1", Port: 19402}
	mgr, _ := newTestManager(t, a.Port, []Addr{b})
	defer mgr.conn.Close()

	peers := mgr.Peers()
	if len(peers) != 1 || peers[0] != b.String() {
		t.Fatalf("Peers(): got %v, want [%s]", peers, b.String())
	}
}
