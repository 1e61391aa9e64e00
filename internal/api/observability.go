package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ringside/internal/combat"
)

// Metrics with bounded cardinality (no per-fighter labels to prevent DoS).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combat_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.0166},
	})

	activeHitboxes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "combat_active_hitboxes",
		Help: "Hitboxes live in the current tick",
	})

	fighterCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "combat_fighter_count",
		Help: "Registered fighters",
	})

	hitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combat_hits_total",
		Help: "Confirmed hits",
	})

	blocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combat_blocks_total",
		Help: "Blocked contacts",
	})

	parriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combat_parries_total",
		Help: "Successful parries by kind",
	}, []string{"kind"}) // Bounded: "normal", "red"

	kosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combat_kos_total",
		Help: "Knockouts",
	})

	motionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "input_motions_recognized_total",
		Help: "Recognized command motions by pattern",
	}, []string{"pattern"}) // Bounded: "qcf", "qcb", "dp"

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// ObserveEvents feeds combat events into the counters. Call with each
// drained batch; never from inside the tick.
func ObserveEvents(events []combat.Event) {
	for _, ev := range events {
		switch ev.Type {
		case combat.EventHit:
			hitsTotal.Inc()
		case combat.EventBlock:
			blocksTotal.Inc()
		case combat.EventParry:
			if p, ok := ev.Payload.(combat.ParryPayload); ok {
				parriesTotal.WithLabelValues(p.Kind).Inc()
			}
		case combat.EventKO:
			kosTotal.Inc()
		case combat.EventMotion:
			if p, ok := ev.Payload.(combat.MotionPayload); ok {
				motionsTotal.WithLabelValues(p.Pattern).Inc()
			}
		}
	}
}

// ObserveSnapshot refreshes the gauges from the latest snapshot.
func ObserveSnapshot(snap *combat.MatchSnapshot) {
	fighterCount.Set(float64(len(snap.Fighters)))
	activeHitboxes.Set(float64(len(snap.Hitboxes)))
}

// RecordTick records tick timing.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// RecordConnectionRejected increments the rejection counter.
// reason must be one of: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit".
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections updates the WebSocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the WebSocket message counter.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST stay on localhost in production
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the internal observability server with pprof and
// the Prometheus endpoint. Binding is forced to localhost unless explicitly
// overridden, so profiling can never be reached from outside.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("⚠️ Debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
