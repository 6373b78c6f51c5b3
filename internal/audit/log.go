// Package audit is the append-only structured record of every peer and
// snippet event a node observes, ultimately serialized by internal/report
// into the end-of-run registry report.
package audit

import (
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Now formats the current local time the way every audit record does.
func Now() string {
	return time.Now().Format(timeLayout)
}

// PeerUpdate is one {to, from, datetime} record, shared by the
// sent-peer-update and received-peer-update streams.
type PeerUpdate struct {
	To       string
	From     string
	Datetime string
}

// Source is one bootstrap source's snapshot: the peers it handed the node
// at the time, and when.
type Source struct {
	Addr     string
	Peers    []string
	Datetime string
}

// Snippet is one delivered chat message, stamped with the Lamport
// timestamp it carried when accepted.
type Snippet struct {
	Timestamp uint64
	Text      string
	Sender    string
}

// Log is the five append-only streams described in spec §3. All mutators
// are safe to call concurrently; readers receive snapshots.
type Log struct {
	mu sync.Mutex

	peers           map[string]struct{}
	peerOrder       []string
	sources         []Source
	sentPeerUpdates []PeerUpdate
	recvPeerUpdates []PeerUpdate
	snippets        []Snippet
}

// New returns an empty Log.
func New() *Log {
	return &Log{peers: make(map[string]struct{})}
}

// LogPeer records addr as ever observed. Idempotent: addr appears at most
// once in the eventual Peers() snapshot, in first-seen order.
func (l *Log) LogPeer(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, seen := l.peers[addr]; seen {
		return
	}
	l.peers[addr] = struct{}{}
	l.peerOrder = append(l.peerOrder, addr)
}

// LogSource records a bootstrap source's peer-list snapshot.
func (l *Log) LogSource(addr string, peers []string, datetime string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]string, len(peers))
	copy(cp, peers)
	l.sources = append(l.sources, Source{Addr: addr, Peers: cp, Datetime: datetime})
}

// LogSentPeerUpdate records one heartbeat sent to a peer.
func (l *Log) LogSentPeerUpdate(to, from, datetime string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sentPeerUpdates = append(l.sentPeerUpdates, PeerUpdate{To: to, From: from, Datetime: datetime})
}

// LogRecvPeerUpdate records one accepted "peer" request.
func (l *Log) LogRecvPeerUpdate(to, from, datetime string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recvPeerUpdates = append(l.recvPeerUpdates, PeerUpdate{To: to, From: from, Datetime: datetime})
}

// LogSnippet records one delivered snippet.
func (l *Log) LogSnippet(timestamp uint64, text, sender string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snippets = append(l.snippets, Snippet{Timestamp: timestamp, Text: text, Sender: sender})
}

// Peers returns the set of peer addresses ever observed, in first-seen
// order.
func (l *Log) Peers() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.peerOrder))
	copy(out, l.peerOrder)
	return out
}

// Sources returns the bootstrap-source snapshots, in append order.
func (l *Log) Sources() []Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Source, len(l.sources))
	copy(out, l.sources)
	return out
}

// SentPeerUpdates returns the sent-heartbeat records, in append order.
func (l *Log) SentPeerUpdates() []PeerUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PeerUpdate, len(l.sentPeerUpdates))
	copy(out, l.sentPeerUpdates)
	return out
}

// RecvPeerUpdates returns the accepted "peer" request records, in append
// order.
func (l *Log) RecvPeerUpdates() []PeerUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PeerUpdate, len(l.recvPeerUpdates))
	copy(out, l.recvPeerUpdates)
	return out
}

// Snippets returns the delivered-snippet records, in append order.
func (l *Log) Snippets() []Snippet {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Snippet, len(l.snippets))
	copy(out, l.snippets)
	return out
}
