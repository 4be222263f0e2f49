package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

type producerMetrics struct {
	messages *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newProducerMetrics(reg prometheus.Registerer) *producerMetrics {
	f := promauto.With(reg)
	return &producerMetrics{
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_messages_total",
			Help: "Kafka messages the producer attempted to publish, by topic and result.",
		}, []string{"topic", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Time spent writing one message to Kafka.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"topic"}),
	}
}

// defaultMetrics is registered once with the process-wide registry.
var defaultMetrics = newProducerMetrics(prometheus.DefaultRegisterer)

func (m *producerMetrics) observe(topic string, took time.Duration, err error) {
	m.duration.WithLabelValues(topic).Observe(took.Seconds())
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.messages.WithLabelValues(topic, result).Inc()
}
