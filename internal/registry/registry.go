// Package registry is the TCP client for the external bootstrap registry:
// an opaque collaborator that hands a node its own address and an initial
// peer list before it joins the mesh, and later receives the end-of-run
// report. The registry drives the exchange — it sends line-terminated
// commands and this client replies.
package registry

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MicahPeacock/snipgossip/internal/peer"
)

// commandReadLen mirrors the original exchange's fixed-size command read:
// registry commands are matched by substring on at most this many bytes.
const commandReadLen = 14

// request is one of the commands the registry can issue.
type request int

const (
	requestEmpty request = iota
	requestName
	requestLocation
	requestCode
	requestReport
	requestPeers
	requestClose
	requestInvalid
)

func toRequest(s string) request {
	switch {
	case s == "":
		return requestEmpty
	case strings.Contains(s, "get team name"):
		return requestName
	case strings.Contains(s, "get code"):
		return requestCode
	case strings.Contains(s, "get location"):
		return requestLocation
	case strings.Contains(s, "get report"):
		return requestReport
	case strings.Contains(s, "receive peers"):
		return requestPeers
	case strings.Contains(s, "close"):
		return requestClose
	default:
		return requestInvalid
	}
}

// Context carries the information the registry exchange reads from and
// writes into, across both the bootstrap call and the report-upload call.
type Context struct {
	TeamName  string
	SourceDir string // walked for "get code"; "." by default
	Address   peer.Addr
	Report    string
	Peers     []peer.Addr
}

// Run dials registryAddr from a TCP socket bound to clientPort, then
// services registry-issued commands until the registry sends "close" or
// the connection ends. Called twice by main: once before the peer manager
// starts (to populate ctx.Address and ctx.Peers), once after it stops (to
// upload ctx.Report).
func Run(clientPort int, registryAddr string, ctx *Context) error {
	localAddr := &net.TCPAddr{Port: clientPort}
	remoteAddr, err := net.ResolveTCPAddr("tcp4", registryAddr)
	if err != nil {
		return fmt.Errorf("registry: resolve %s: %w", registryAddr, err)
	}

	conn, err := net.DialTCP("tcp4", localAddr, remoteAddr)
	if err != nil {
		return fmt.Errorf("registry: dial %s: %w", registryAddr, err)
	}
	defer conn.Close()

	if ctx.Address == (peer.Addr{}) {
		tcpAddr := conn.LocalAddr().(*net.TCPAddr)
		ip := tcpAddr.IP.To4()
		if ip == nil {
			ip = tcpAddr.IP
		}
		ctx.Address = peer.Addr{Host: ip.String(), Port: tcpAddr.Port}
	}

	r := bufio.NewReader(conn)
	for {
		cmd, err := readCommand(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("registry: read command: %w", err)
		}

		switch toRequest(cmd) {
		case requestEmpty:
			// no-op
		case requestName:
			if err := writeLine(conn, ctx.TeamName); err != nil {
				return err
			}
		case requestLocation:
			if err := writeLine(conn, ctx.Address.String()); err != nil {
				return err
			}
		case requestCode:
			if err := handleGetCode(conn, ctx); err != nil {
				return err
			}
		case requestReport:
			if err := writeLine(conn, ctx.Report); err != nil {
				return err
			}
		case requestPeers:
			closed, err := handleReceivePeers(conn, r, ctx)
			if err != nil {
				return err
			}
			if closed {
				return nil
			}
		case requestClose:
			return nil
		case requestInvalid:
			// Unrecognized command: the registry protocol has no NAK; ignore
			// and keep servicing the connection.
		}
	}
}

func readCommand(r *bufio.Reader) (string, error) {
	buf := make([]byte, commandReadLen)
	n, err := r.Read(buf)
	if n == 0 {
		if err != nil {
			return "", err
		}
		return "", nil
	}
	return string(buf[:n]), nil
}

func writeLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\n")
	return err
}

func handleGetCode(w io.Writer, ctx *Context) error {
	if err := writeLine(w, "go"); err != nil {
		return err
	}
	dir := ctx.SourceDir
	if dir == "" {
		dir = "."
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "_examples" || d.Name() == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		contents, readErr := readFile(path)
		if readErr != nil {
			return nil
		}
		return writeLine(w, contents)
	})
	if err != nil {
		return fmt.Errorf("registry: walk source dir: %w", err)
	}
	return writeLine(w, "...")
}

// handleReceivePeers reads the "receive peers" block and reports whether
// the registry appended a "close" line, meaning the caller should stop
// servicing this connection.
func handleReceivePeers(w io.Writer, r *bufio.Reader, ctx *Context) (bool, error) {
	countLine, err := r.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("registry: read peer count: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil {
		return false, fmt.Errorf("registry: parse peer count %q: %w", countLine, err)
	}

	for i := 0; i < n; i++ {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("registry: read peer entry: %w", err)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "null" {
			continue
		}
		addr, parseErr := peer.ParseAddr(trimmed)
		if parseErr != nil {
			continue
		}
		ctx.Peers = append(ctx.Peers, addr)
	}

	// The registry may immediately follow the peer block with a "close"
	// line; if so this connection is done.
	if peeked, err := r.Peek(commandReadLen); err == nil && strings.Contains(string(peeked), "close") {
		if c, ok := w.(io.Closer); ok {
			c.Close()
		}
		return true, nil
	}
	return false, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
