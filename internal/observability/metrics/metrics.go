package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the chat flow.
type ChatMetrics struct {
	turnsTotal    *prometheus.CounterVec
	bookingsTotal *prometheus.CounterVec
	turnLatency   *prometheus.HistogramVec
	emailFailures *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labease",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns handled",
		}, []string{"stage", "status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labease",
			Subsystem: "booking",
			Name:      "created_total",
			Help:      "Total bookings created",
		}, []string{"source"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "labease",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "Latency of chat turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	m.emailFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labease",
		Subsystem: "notify",
		Name:      "email_failures_total",
		Help:      "Total booking emails that failed to send",
	}, []string{"action"})
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsTotal, m.turnLatency, m.emailFailures)
	return m
}

func (m *ChatMetrics) ObserveTurn(stage, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage, status).Inc()
}

func (m *ChatMetrics) ObserveBooking(source string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(source).Inc()
}

func (m *ChatMetrics) ObserveTurnLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(stage).Observe(seconds)
}

func (m *ChatMetrics) ObserveEmailFailure(action string) {
	if m == nil {
		return
	}
	m.emailFailures.WithLabelValues(action).Inc()
}
