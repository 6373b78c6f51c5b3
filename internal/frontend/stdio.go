// Package frontend bridges local stdin/stdout (or an interactive TUI) to
// the peer manager's ioqueue.Queue. The peer manager never imports this
// package; it only ever talks to the queue, so either frontend below
// satisfies the same stdin-to-outgoing, incoming-to-stdout contract.
package frontend

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MicahPeacock/snipgossip/internal/ioqueue"
)

// Stdio bridges stdin/stdout to an ioqueue.Queue: a line typed on stdin
// becomes an outgoing snippet, and every incoming snippet is printed to
// stdout as "<lamport_ts> <sender>> <text>". It is the default frontend,
// equivalent to the original's snippet_manager read/write thread pair.
type Stdio struct {
	q      *ioqueue.Queue
	onQuit func()
}

// NewStdio returns a Stdio frontend. onQuit is invoked when the user types
// "close" on stdin, mirroring the original's local "close" shutdown path.
func NewStdio(q *ioqueue.Queue, onQuit func()) *Stdio {
	return &Stdio{q: q, onQuit: onQuit}
}

// Run starts the read and write loops and blocks until stdin is closed or
// the user types "close".
func (s *Stdio) Run() {
	done := make(chan struct{})
	go s.writeLoop(done)
	s.readLoop()
	close(done)
}

func (s *Stdio) readLoop() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "close" {
			if s.onQuit != nil {
				s.onQuit()
			}
			return
		}
		s.q.PutOutgoing(line)
	}
}

func (s *Stdio) writeLoop(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		if s.q.HasIncoming() {
			msg := s.q.PopIncoming()
			fmt.Printf("%d %s> %s\n", msg.Timestamp, msg.Sender, strings.TrimSpace(msg.Text))
			continue
		}
		time.Sleep(50 * time.Millisecond)
	}
}
