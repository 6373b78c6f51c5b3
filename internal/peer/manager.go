package peer

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/MicahPeacock/snipgossip/internal/audit"
	"github.com/MicahPeacock/snipgossip/internal/ioqueue"
	"github.com/MicahPeacock/snipgossip/internal/telemetry"
	"github.com/MicahPeacock/snipgossip/internal/wire"
)

const (
	heartbeatInterval = 5 * time.Second
	broadcastPoll     = 200 * time.Millisecond
	staleTimeout      = 20 * time.Second
)

// Manager orchestrates the three cooperating loops of one gossip node: it
// owns the UDP socket, the shared State, and the audit Log that produces
// the end-of-run report.
type Manager struct {
	self  Addr
	conn  *net.UDPConn
	state *State
	log   *audit.Log
	ioq   *ioqueue.Queue

	debug   bool
	metrics *telemetry.Metrics
}

// NewManager binds a UDP socket to self and seeds the shared state with
// self and any bootstrap peers. debug enables the verbose stderr tracing
// spec §7 reserves for malformed-request diagnostics. metrics may be nil.
func NewManager(self Addr, bootstrapSource string, bootstrapPeers []Addr, ioq *ioqueue.Queue, debug bool, metrics *telemetry.Metrics) (*Manager, error) {
	conn, err := net.ListenUDP("udp4", self.UDPAddr())
	if err != nil {
		return nil, fmt.Errorf("peer: bind %s: %w", self, err)
	}

	m := &Manager{
		self:    self,
		conn:    conn,
		state:   NewState(),
		log:     audit.New(),
		ioq:     ioq,
		debug:   debug,
		metrics: metrics,
	}

	m.state.Join(self)
	m.log.LogPeer(self.String())

	if len(bootstrapPeers) > 0 {
		names := make([]string, 0, len(bootstrapPeers))
		for _, p := range bootstrapPeers {
			m.state.Join(p)
			m.log.LogPeer(p.String())
			names = append(names, p.String())
		}
		m.log.LogSource(bootstrapSource, names, audit.Now())
	}

	return m, nil
}

// Self returns the node's own bound address.
func (m *Manager) Self() Addr { return m.self }

// Peers returns the currently live peer set (excluding self), formatted as
// "host:port" strings, for display by a frontend. It is a snapshot take
// of State and does not include peers pruned for staleness.
func (m *Manager) Peers() []string {
	table := m.state.Peers()
	out := make([]string, 0, len(table))
	for addr := range table {
		if addr == m.self {
			continue
		}
		out = append(out, addr.String())
	}
	return out
}

// Log returns the audit log, readable only after Run has returned.
func (m *Manager) Log() *audit.Log { return m.log }

// Run spawns the heartbeat, broadcast, and listen loops, waits for listen
// to return (on receipt of a "stop" request or a fatal socket error), then
// clears the run flag so the other two loops exit on their next iteration.
// Run itself returns once listen has stopped; it does not wait for the
// heartbeat and broadcast loops to exit, and offers no way to join them.
func (m *Manager) Run() error {
	go m.heartbeatLoop()
	go m.broadcastLoop()
	err := m.listenLoop()
	m.state.Halt()
	return err
}

func (m *Manager) heartbeatLoop() {
	for m.state.IsRunning() {
		m.sendHeartbeats()
		m.prunePeers()
		time.Sleep(heartbeatInterval)
	}
}

func (m *Manager) sendHeartbeats() {
	sent := 0
	for addr := range m.state.Peers() {
		if addr == m.self {
			continue
		}
		m.send(addr, wire.EncodePeer(m.self.String()))
		m.log.LogSentPeerUpdate(addr.String(), m.self.String(), audit.Now())
		sent++
	}
	m.metrics.AddHeartbeatsSent(sent)
	m.metrics.SetPeersKnown(len(m.state.Peers()))
	m.metrics.SetLamportClock(m.state.Timestamp())
}

func (m *Manager) prunePeers() {
	now := time.Now()
	snapshot := m.state.Peers()
	pruned := 0
	for addr, lastSeen := range snapshot {
		if addr == m.self {
			continue
		}
		if now.Sub(lastSeen) > staleTimeout {
			m.state.Leave(addr)
			pruned++
		}
	}
	if m.debug && pruned > 0 {
		log.Printf("peer: pruned %d stale peer(s)", pruned)
	}
	m.metrics.AddPeersPruned(pruned)
}

func (m *Manager) broadcastLoop() {
	for m.state.IsRunning() {
		if m.ioq.HasOutgoing() {
			text := m.ioq.PopOutgoing()
			ts := m.state.IncrementTimestamp()
			m.metrics.SetLamportClock(ts)
			payload := wire.EncodeSnippet(ts, text)
			for addr := range m.state.Peers() {
				if addr == m.self {
					continue
				}
				m.send(addr, payload)
			}
			m.metrics.IncSnippetsSent()
		}
		time.Sleep(broadcastPoll)
	}
}

func (m *Manager) listenLoop() error {
	buf := make([]byte, wire.MaxDatagram)
	for {
		n, raddr, err := m.conn.ReadFromUDP(buf)
		if err != nil {
			if !m.state.IsRunning() {
				return nil
			}
			return fmt.Errorf("peer: listen socket failed: %w", err)
		}

		sender := AddrFromUDP(raddr)
		verb, payload, ok, decodeErr := wire.Decode(buf[:n])
		if !ok {
			continue
		}
		if decodeErr != nil {
			if m.debug {
				log.Printf("peer: dropping malformed %s request from %s: %v", verb, sender, decodeErr)
			}
			continue
		}

		switch verb {
		case wire.VerbPeer:
			m.onPeer(sender, payload.(wire.PeerRequest))
		case wire.VerbSnippet:
			m.onSnippet(sender, payload.(wire.SnippetRequest))
		case wire.VerbStop:
			return nil
		}
	}
}

func (m *Manager) onPeer(sender Addr, req wire.PeerRequest) {
	m.state.Update(sender)
	m.log.LogPeer(sender.String())

	newPeer, err := ParseAddr(req.Addr)
	if err != nil {
		log.Printf("peer: address resolution failed for %q from %s: %v", req.Addr, sender, err)
		return
	}

	m.state.Update(newPeer)
	m.log.LogPeer(newPeer.String())
	m.log.LogRecvPeerUpdate(sender.String(), newPeer.String(), audit.Now())
	m.metrics.IncPeerUpdatesReceived()
	m.metrics.SetPeersKnown(len(m.state.Peers()))
}

func (m *Manager) onSnippet(sender Addr, req wire.SnippetRequest) {
	m.state.Update(sender)
	m.state.UpdateTimestamp(req.Timestamp)
	ts := m.state.Timestamp()

	m.ioq.PutIncoming(ioqueue.Incoming{Sender: sender.String(), Text: req.Text, Timestamp: ts})
	m.log.LogSnippet(ts, req.Text, sender.String())
	m.metrics.IncSnippetsReceived()
	m.metrics.SetLamportClock(ts)
}

func (m *Manager) send(addr Addr, payload []byte) {
	if _, err := m.conn.WriteToUDP(payload, addr.UDPAddr()); err != nil {
		if m.debug {
			log.Printf("peer: send to %s failed: %v", addr, err)
		}
	}
}

// SelfStop sends a "stop" datagram to this node's own socket, unblocking
// its listen loop. Used when the local user quits: typing "close" in the
// stdio frontend, or leaving the TUI.
func (m *Manager) SelfStop() error {
	conn, err := net.DialUDP("udp4", nil, m.self.UDPAddr())
	if err != nil {
		return fmt.Errorf("peer: self-stop dial: %w", err)
	}
	defer conn.Close()
	_, err = conn.Write(wire.EncodeStop())
	return err
}
