// Package metrics exposes Prometheus counters for the bot's activity plus
// the HTTP handler serving them next to the health endpoint.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal   *prometheus.CounterVec
	BridgeForwards  prometheus.Counter
	RelayMessages   *prometheus.CounterVec
	PollVotes       prometheus.Counter
	MutedDeletes    prometheus.Counter
	GuardBans       prometheus.Counter
	BroadcastsTotal prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aurora_commands_total",
			Help: "Application commands handled, by top-level command name",
		}, []string{"command"}),
		BridgeForwards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aurora_bridge_forwards_total",
			Help: "Messages forwarded across the chat bridge",
		}),
		RelayMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aurora_relay_messages_total",
			Help: "Number relay attempts, by outcome",
		}, []string{"outcome"}),
		PollVotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aurora_poll_votes_total",
			Help: "Poll vote button presses",
		}),
		MutedDeletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aurora_muted_deletes_total",
			Help: "Messages deleted because the author is muted",
		}),
		GuardBans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aurora_guard_bans_total",
			Help: "Suspected bot accounts banned by the screening guard",
		}),
		BroadcastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aurora_broadcasts_total",
			Help: "Announcement embeds delivered to guild channels",
		}),
	}
	registry.MustRegister(
		m.CommandsTotal,
		m.BridgeForwards,
		m.RelayMessages,
		m.PollVotes,
		m.MutedDeletes,
		m.GuardBans,
		m.BroadcastsTotal,
		prometheus.NewGoCollector(),
	)
	return m
}

// Router serves /metrics and /health for the optional HTTP listener.
func (m *Metrics) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
