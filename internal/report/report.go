// Package report assembles the audit log into the registry-report text
// format: a newline-separated document with five counted sections, safe
// to call only after the peer manager's Run has returned.
package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MicahPeacock/snipgossip/internal/audit"
)

// NewRunID returns a fresh identifier for one node run, used only to tag
// operator-facing log lines distinguishing repeated registry uploads
// during development. It is never written into the report text itself,
// so the wire format stays byte-for-byte what spec §6 defines.
func NewRunID() string {
	return uuid.NewString()
}

// Assemble serializes log into the exact text shape the bootstrap
// registry expects for "get report".
func Assemble(log *audit.Log) string {
	var b strings.Builder

	peers := log.Peers()
	fmt.Fprintf(&b, "%d\n", len(peers))
	for _, p := range peers {
		fmt.Fprintf(&b, "%s\n", p)
	}

	sources := log.Sources()
	fmt.Fprintf(&b, "%d\n", len(sources))
	for _, src := range sources {
		fmt.Fprintf(&b, "%s\n%s\n%d\n", src.Addr, src.Datetime, len(src.Peers))
		for _, p := range src.Peers {
			fmt.Fprintf(&b, "%s\n", p)
		}
	}

	recv := log.RecvPeerUpdates()
	fmt.Fprintf(&b, "%d\n", len(recv))
	for _, u := range recv {
		fmt.Fprintf(&b, "%s %s %s\n", u.To, u.From, u.Datetime)
	}

	sent := log.SentPeerUpdates()
	fmt.Fprintf(&b, "%d\n", len(sent))
	for _, u := range sent {
		fmt.Fprintf(&b, "%s %s %s\n", u.To, u.From, u.Datetime)
	}

	snippets := log.Snippets()
	fmt.Fprintf(&b, "%d\n", len(snippets))
	for _, s := range snippets {
		fmt.Fprintf(&b, "%d %s %s\n", s.Timestamp, s.Text, s.Sender)
	}

	return b.String()
}
