// Package peer owns the live peer set, the Lamport clock, and the three
// cooperating UDP loops (heartbeat, broadcast, listen) that make up a
// gossip node.
package peer

import (
	"fmt"
	"net"
	"strconv"
)

// Addr is an IPv4 address plus a UDP port, serialized as "host:port" in
// dotted-quad form. Two addresses compare equal iff both fields match, so
// Addr is safe to use directly as a map key.
type Addr struct {
	Host string
	Port int
}

// ParseAddr parses a "host:port" string into an Addr. The host must already
// be in dotted-quad form; ParseAddr does not perform DNS resolution.
func ParseAddr(s string) (Addr, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Addr{}, fmt.Errorf("peer: parse address %q: %w", s, err)
	}
	if net.ParseIP(host) == nil || net.ParseIP(host).To4() == nil {
		return Addr{}, fmt.Errorf("peer: %q is not an IPv4 address", host)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Addr{}, fmt.Errorf("peer: parse port %q: %w", portStr, err)
	}
	return Addr{Host: host, Port: port}, nil
}

// AddrFromUDP converts a *net.UDPAddr into an Addr, rendering its IP as
// dotted-quad IPv4.
func AddrFromUDP(u *net.UDPAddr) Addr {
	ip := u.IP.To4()
	if ip == nil {
		ip = u.IP
	}
	return Addr{Host: ip.String(), Port: u.Port}
}

// UDPAddr resolves the Addr to a *net.UDPAddr suitable for net.UDPConn I/O.
func (a Addr) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP(a.Host), Port: a.Port}
}

// String renders the address as "host:port".
func (a Addr) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}
