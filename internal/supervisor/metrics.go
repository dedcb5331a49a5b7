package supervisor

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ConaryLabs/mira/internal/mlog"
)

// Metrics holds the supervisor's operator-facing gauges: lane
// heartbeat age and embedding queue depth per project, grounded on
// the pack's prometheus/client_golang usage for background-worker
// visibility. Registered against a private registry rather than the
// global default one, so a daemon that embeds this package twice in
// tests never double-registers.
type Metrics struct {
	reg *prometheus.Registry

	fastHeartbeatAge prometheus.Gauge
	slowHeartbeatAge prometheus.Gauge
	queueDepth       *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		fastHeartbeatAge: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "mira",
			Subsystem: "supervisor",
			Name:      "fast_lane_heartbeat_age_seconds",
			Help:      "Seconds since the fast lane last completed a cycle.",
		}),
		slowHeartbeatAge: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "mira",
			Subsystem: "supervisor",
			Name:      "slow_lane_heartbeat_age_seconds",
			Help:      "Seconds since the slow lane last completed a cycle.",
		}),
		queueDepth: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mira",
			Subsystem: "embedding",
			Name:      "queue_depth",
			Help:      "Pending embedding jobs per project.",
		}, []string{"project_id"}),
	}
	return m
}

// Sample refreshes the heartbeat-age gauges from the supervisor's
// current state. The Supervisor's sampleLoop calls it every 10 seconds
// rather than on every scrape.
func (m *Metrics) Sample(s *Supervisor, now time.Time) {
	m.fastHeartbeatAge.Set(now.Sub(time.Unix(s.fast.Heartbeat(), 0)).Seconds())
	m.slowHeartbeatAge.Set(now.Sub(time.Unix(s.slow.Heartbeat(), 0)).Seconds())
}

// SetQueueDepth records one project's pending-embedding count.
func (m *Metrics) SetQueueDepth(projectID int64, depth int) {
	m.queueDepth.WithLabelValues(strconv.FormatInt(projectID, 10)).Set(float64(depth))
}

// ServeMetrics starts a /metrics HTTP listener on addr, returning once
// ctx is cancelled. A blank addr is a no-op: metrics are disabled by
// default, opted into via config.
func (m *Metrics) ServeMetrics(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	log := mlog.Get(mlog.CategorySupervisor)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("metrics listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
