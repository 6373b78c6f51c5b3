// Package telemetry exposes optional Prometheus instrumentation for a
// gossip node. Wiring it in is never required for correctness: every
// method is nil-receiver safe, so a Manager constructed without a
// metrics address simply skips every call.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the set of gauges and counters one gossip node maintains.
// The zero value is not usable; construct with New.
type Metrics struct {
	registry *prometheus.Registry

	peersKnown       prometheus.Gauge
	heartbeatsSent   prometheus.Counter
	peerUpdatesRecvd prometheus.Counter
	snippetsSent     prometheus.Counter
	snippetsRecvd    prometheus.Counter
	peersPruned      prometheus.Counter
	lamportClock     prometheus.Gauge
}

// New builds a fresh, independently registered Metrics instance, mirroring
// zephyrcache's per-process prometheus.NewRegistry() pattern rather than
// the global default registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		peersKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "snipgossip",
			Name:      "peers_known",
			Help:      "Current number of peers in the membership table.",
		}),
		heartbeatsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snipgossip",
			Name:      "heartbeats_sent_total",
			Help:      "Total number of 'peer' heartbeat datagrams sent.",
		}),
		peerUpdatesRecvd: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snipgossip",
			Name:      "peer_updates_received_total",
			Help:      "Total number of accepted 'peer' requests.",
		}),
		snippetsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snipgossip",
			Name:      "snippets_sent_total",
			Help:      "Total number of 'snip' datagrams broadcast.",
		}),
		snippetsRecvd: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snipgossip",
			Name:      "snippets_received_total",
			Help:      "Total number of delivered snippets.",
		}),
		peersPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snipgossip",
			Name:      "peers_pruned_total",
			Help:      "Total number of peers evicted for staleness.",
		}),
		lamportClock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "snipgossip",
			Name:      "lamport_clock",
			Help:      "Current value of this node's Lamport clock.",
		}),
	}
	m.registry.MustRegister(
		m.peersKnown, m.heartbeatsSent, m.peerUpdatesRecvd,
		m.snippetsSent, m.snippetsRecvd, m.peersPruned, m.lamportClock,
	)
	return m
}

// Handler exposes the /metrics endpoint for this Metrics' registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SetPeersKnown(n int) {
	if m == nil {
		return
	}
	m.peersKnown.Set(float64(n))
}

func (m *Metrics) AddHeartbeatsSent(n int) {
	if m == nil {
		return
	}
	m.heartbeatsSent.Add(float64(n))
}

func (m *Metrics) IncPeerUpdatesReceived() {
	if m == nil {
		return
	}
	m.peerUpdatesRecvd.Inc()
}

func (m *Metrics) IncSnippetsSent() {
	if m == nil {
		return
	}
	m.snippetsSent.Inc()
}

func (m *Metrics) IncSnippetsReceived() {
	if m == nil {
		return
	}
	m.snippetsRecvd.Inc()
}

func (m *Metrics) AddPeersPruned(n int) {
	if m == nil || n == 0 {
		return
	}
	m.peersPruned.Add(float64(n))
}

func (m *Metrics) SetLamportClock(v uint64) {
	if m == nil {
		return
	}
	m.lamportClock.Set(float64(v))
}
