package core

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics keep bounded label values only.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blaster_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
	})

	peersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blaster_peers_connected",
		Help: "Peers that completed the join handshake",
	})

	shotsFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blaster_shots_fired_total",
		Help: "Fire requests accepted by the authority",
	})

	eliminations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blaster_eliminations_total",
		Help: "Combatants eliminated",
	})

	joinsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blaster_joins_rejected_total",
		Help: "Join requests the authority refused",
	})

	rpcRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blaster_rpc_rejected_total",
		Help: "Client messages dropped before reaching the simulation",
	}, []string{"reason"}) // "rate_limit", "inbox_full", "unknown_peer"
)

// NewDebugRouter serves /metrics and /health. Bind it to a private address.
func NewDebugRouter(s *Server) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"name":   s.name,
			"peers":  s.PlayerCount(),
			"tick":   s.loop.Ticks(),
		})
	})
	return r
}
