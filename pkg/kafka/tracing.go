package kafka

import (
	"context"
	"slices"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HeaderCarrier exposes message headers to OpenTelemetry propagators.
type HeaderCarrier []kafka.Header

var _ propagation.TextMapCarrier = (*HeaderCarrier)(nil)

func (c *HeaderCarrier) Get(key string) string {
	if i := c.index(key); i >= 0 {
		return string((*c)[i].Value)
	}
	return ""
}

// Set replaces the header named key, or appends it.
func (c *HeaderCarrier) Set(key, value string) {
	if i := c.index(key); i >= 0 {
		(*c)[i].Value = []byte(value)
		return
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *HeaderCarrier) Keys() []string {
	keys := make([]string, len(*c))
	for i, h := range *c {
		keys[i] = h.Key
	}
	return keys
}

func (c *HeaderCarrier) index(key string) int {
	return slices.IndexFunc(*c, func(h kafka.Header) bool { return h.Key == key })
}

// InjectTraceContext writes the span context of ctx into msg's headers using
// the global propagator.
func InjectTraceContext(ctx context.Context, msg *kafka.Message) {
	carrier := HeaderCarrier(msg.Headers)
	otel.GetTextMapPropagator().Inject(ctx, &carrier)
	msg.Headers = carrier
}
