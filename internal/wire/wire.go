// Package wire implements the four-byte-verb UDP wire format: "peer",
// "snip", and "stop" requests: decoding of received datagrams and encoding
// of the requests this node sends. The protocol has no replies.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxDatagram is the largest datagram the listen loop will read.
const MaxDatagram = 2048

// Verb is one of the three recognized four-byte request prefixes.
type Verb string

const (
	VerbPeer    Verb = "peer"
	VerbSnippet Verb = "snip"
	VerbStop    Verb = "stop"
)

const verbLen = 4

// PeerRequest carries the sender's own bound address in a heartbeat.
type PeerRequest struct {
	Addr string // "host:port"
}

// SnippetRequest carries a Lamport-stamped chat message.
type SnippetRequest struct {
	Timestamp uint64
	Text      string
}

// Decode splits a raw datagram into its verb and the decoded payload.
// Unknown verbs return ok=false without an error: the listen loop silently
// ignores them per spec. A recognized verb with an unparseable payload
// returns a non-nil error so the caller can log and drop it.
func Decode(data []byte) (verb Verb, payload any, ok bool, err error) {
	if len(data) < verbLen {
		return "", nil, false, nil
	}
	v := Verb(data[:verbLen])
	rest := strings.TrimSpace(string(data[verbLen:]))

	switch v {
	case VerbPeer:
		return v, PeerRequest{Addr: rest}, true, nil
	case VerbSnippet:
		ts, text, splitErr := splitSnippet(rest)
		if splitErr != nil {
			return v, nil, true, splitErr
		}
		return v, SnippetRequest{Timestamp: ts, Text: text}, true, nil
	case VerbStop:
		return v, nil, true, nil
	default:
		return v, nil, false, nil
	}
}

func splitSnippet(payload string) (uint64, string, error) {
	parts := strings.SplitN(payload, " ", 2)
	ts, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("wire: non-numeric lamport timestamp %q: %w", parts[0], err)
	}
	text := ""
	if len(parts) == 2 {
		text = parts[1]
	}
	return ts, text, nil
}

// EncodePeer formats a "peer" heartbeat announcing addr.
func EncodePeer(addr string) []byte {
	return []byte(string(VerbPeer) + addr)
}

// EncodeSnippet formats a "snip" request carrying timestamp and text.
func EncodeSnippet(timestamp uint64, text string) []byte {
	return []byte(fmt.Sprintf("%s%d %s", VerbSnippet, timestamp, text))
}

// EncodeStop formats a "stop" request, used to unblock a node's own
// listen loop on shutdown.
func EncodeStop() []byte {
	return []byte(string(VerbStop))
}
