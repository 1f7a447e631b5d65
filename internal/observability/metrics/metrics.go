package metrics

import "github.com/prometheus/client_golang/prometheus"

// DialogueMetrics exposes counters/histograms for the scheduling dialogue.
type DialogueMetrics struct {
	messagesTotal   *prometheus.CounterVec
	bookingsTotal   *prometheus.CounterVec
	slotComputation prometheus.Histogram
}

func NewDialogueMetrics(reg prometheus.Registerer) *DialogueMetrics {
	m := &DialogueMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookwise",
			Subsystem: "dialogue",
			Name:      "messages_total",
			Help:      "Total processed chat messages",
		}, []string{"intent", "outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookwise",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Total booking attempts",
		}, []string{"result"}),
		slotComputation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bookwise",
			Subsystem: "availability",
			Name:      "computation_seconds",
			Help:      "Latency of free-slot computation including backend fetch",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.bookingsTotal, m.slotComputation)
	return m
}

func (m *DialogueMetrics) ObserveMessage(intent, outcome string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(intent, outcome).Inc()
}

func (m *DialogueMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}

func (m *DialogueMetrics) ObserveSlotComputation(seconds float64) {
	if m == nil {
		return
	}
	m.slotComputation.Observe(seconds)
}
