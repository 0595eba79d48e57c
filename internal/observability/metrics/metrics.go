package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the conversational
// booking engine.
type AssistantMetrics struct {
	turnsTotal    *prometheus.CounterVec
	fallbackTotal prometheus.Counter
	bookingTotal  *prometheus.CounterVec
	commitLatency prometheus.Histogram
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Processed conversation turns",
		}, []string{"intent", "tier"}),
		fallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "assistant",
			Subsystem: "dialogue",
			Name:      "model_fallback_total",
			Help:      "Turns where the model tier failed over to the deterministic pipeline",
		}),
		bookingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		commitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "assistant",
			Subsystem: "booking",
			Name:      "commit_latency_seconds",
			Help:      "Latency of booking commits",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.fallbackTotal, m.bookingTotal, m.commitLatency)
	return m
}

func (m *AssistantMetrics) ObserveTurn(intent, tier string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, tier).Inc()
}

func (m *AssistantMetrics) ObserveModelFallback() {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc()
}

func (m *AssistantMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(outcome).Inc()
}

func (m *AssistantMetrics) ObserveCommitLatency(seconds float64) {
	if m == nil {
		return
	}
	m.commitLatency.Observe(seconds)
}
