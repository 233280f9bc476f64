package sim

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes simulator state as Prometheus collectors. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	occupancy   *prometheus.GaugeVec
	latency     *prometheus.GaugeVec
	ticks       prometheus.Counter
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bulkhead",
			Name:      "pool_occupancy_percent",
			Help:      "Current pool occupancy per service.",
		}, []string{"service"}),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bulkhead",
			Name:      "service_latency",
			Help:      "Simulated latency factor per service.",
		}, []string{"service"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bulkhead",
			Name:      "ticks_total",
			Help:      "Number of ticks applied.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bulkhead",
			Name:      "status_transitions_total",
			Help:      "Status tier changes per service and destination tier.",
		}, []string{"service", "status"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bulkhead",
			Name:      "latency_rejections_total",
			Help:      "Latency writes rejected by the control surface.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.occupancy, m.latency, m.ticks, m.transitions, m.rejected)
	return m
}

func (m *Metrics) observeSlot(service string, latency, occupancy float64) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(service).Set(latency)
	m.occupancy.WithLabelValues(service).Set(occupancy)
}

func (m *Metrics) observeTick() {
	if m == nil {
		return
	}
	m.ticks.Inc()
}

func (m *Metrics) observeTransition(service string, to Status) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(service, string(to)).Inc()
}

func (m *Metrics) observeRejection(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
