// Package metrics exposes Prometheus instruments for the answer pipeline and
// the telephony webhooks.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics counts answer requests and measures retrieval latency.
type AssistantMetrics struct {
	answersTotal     *prometheus.CounterVec
	retrievalLatency *prometheus.HistogramVec
	webhookTotal     *prometheus.CounterVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		answersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "byteme",
			Subsystem: "assistant",
			Name:      "answers_total",
			Help:      "Total answer requests by endpoint and outcome",
		}, []string{"endpoint", "status"}),
		retrievalLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "byteme",
			Subsystem: "assistant",
			Name:      "answer_latency_seconds",
			Help:      "Latency of the retrieve-and-answer pipeline",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "byteme",
			Subsystem: "telephony",
			Name:      "webhook_total",
			Help:      "Total telephony webhook requests by route",
		}, []string{"route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.answersTotal, m.retrievalLatency, m.webhookTotal)
	return m
}

func (m *AssistantMetrics) ObserveAnswer(endpoint, status string) {
	if m == nil {
		return
	}
	m.answersTotal.WithLabelValues(endpoint, status).Inc()
}

func (m *AssistantMetrics) ObserveLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.retrievalLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *AssistantMetrics) ObserveWebhook(route, status string) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(route, status).Inc()
}
