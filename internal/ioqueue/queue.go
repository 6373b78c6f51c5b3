// Package ioqueue is the thread-safe bidirectional message queue bridging
// the frontend (stdin/stdout or a TUI) and the peer manager's broadcast
// and listen loops.
package ioqueue

import "sync"

// Incoming is one snippet delivered from the network to the frontend.
type Incoming struct {
	Sender    string
	Text      string
	Timestamp uint64
}

// Queue holds two FIFOs, guarded by a single mutex: outgoing text typed
// locally and waiting to be broadcast, and incoming snippets received from
// peers and waiting to be printed. Popping from an empty queue is
// undefined; callers must gate on the matching Has* method.
type Queue struct {
	mu       sync.Mutex
	outgoing []string
	incoming []Incoming
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// PutOutgoing enqueues text typed locally for broadcast.
func (q *Queue) PutOutgoing(text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.outgoing = append(q.outgoing, text)
}

// HasOutgoing reports whether an outgoing message is waiting.
func (q *Queue) HasOutgoing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.outgoing) > 0
}

// PopOutgoing removes and returns the oldest outgoing message. The caller
// must have checked HasOutgoing first.
func (q *Queue) PopOutgoing() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	text := q.outgoing[0]
	q.outgoing = q.outgoing[1:]
	return text
}

// PutIncoming enqueues a snippet received from a peer for the frontend.
func (q *Queue) PutIncoming(msg Incoming) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.incoming = append(q.incoming, msg)
}

// HasIncoming reports whether an incoming snippet is waiting.
func (q *Queue) HasIncoming() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.incoming) > 0
}

// PopIncoming removes and returns the oldest incoming snippet. The caller
// must have checked HasIncoming first.
func (q *Queue) PopIncoming() Incoming {
	q.mu.Lock()
	defer q.mu.Unlock()
	msg := q.incoming[0]
	q.incoming = q.incoming[1:]
	return msg
}
