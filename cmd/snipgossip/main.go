// Command snipgossip runs one node of a decentralized peer-to-peer chat
// mesh: it bootstraps through an external registry, joins a UDP gossip
// overlay, and orders messages across the group with Lamport clocks.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/MicahPeacock/snipgossip/internal/frontend"
	"github.com/MicahPeacock/snipgossip/internal/ioqueue"
	"github.com/MicahPeacock/snipgossip/internal/peer"
	"github.com/MicahPeacock/snipgossip/internal/registry"
	"github.com/MicahPeacock/snipgossip/internal/report"
	"github.com/MicahPeacock/snipgossip/internal/telemetry"
)

// registryAddr is the hard-coded bootstrap registry endpoint, matching
// the original implementation's fixed address.
const registryAddr = "136.159.5.22:55921"

func main() {
	debug := flag.Bool("debug", false, "log malformed/dropped requests and pruning activity to stderr")
	useTUI := flag.Bool("tui", false, "use the interactive Bubble Tea frontend instead of plain stdin/stdout")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this host:port")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <team name> <port>\n", os.Args[0])
		os.Exit(1)
	}
	teamName := flag.Arg(0)
	port, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid port %q: %v\n", flag.Arg(1), err)
		os.Exit(1)
	}

	start := time.Now()
	runID := report.NewRunID()
	log.Printf("[%s] getting initial peers from registry...", runID)

	ctx := &registry.Context{TeamName: teamName}
	if err := registry.Run(port, registryAddr, ctx); err != nil {
		log.Fatalf("registry bootstrap failed: %v", err)
	}

	var metrics *telemetry.Metrics
	if *metricsAddr != "" {
		metrics = telemetry.New()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	q := ioqueue.New()
	manager, err := peer.NewManager(ctx.Address, registryAddr, ctx.Peers, q, *debug, metrics)
	if err != nil {
		log.Fatalf("failed to start peer manager: %v", err)
	}

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- manager.Run() }()

	if *useTUI {
		ui := frontend.NewTUI(manager.Self().String(), q, manager.Peers)
		if err := ui.Run(); err != nil {
			log.Printf("tui exited: %v", err)
		}
		if err := manager.SelfStop(); err != nil {
			log.Printf("self-stop failed: %v", err)
		}
	} else {
		stdio := frontend.NewStdio(q, func() {
			if err := manager.SelfStop(); err != nil {
				log.Printf("self-stop failed: %v", err)
			}
		})
		stdio.Run()
	}

	if err := <-runErrCh; err != nil {
		log.Printf("peer manager stopped with error: %v", err)
	}

	log.Printf("[%s] node started %s, sending report...", runID, humanize.Time(start))

	ctx.Report = report.Assemble(manager.Log())
	if err := registry.Run(port, registryAddr, ctx); err != nil {
		log.Printf("failed to upload report: %v", err)
	}
}

