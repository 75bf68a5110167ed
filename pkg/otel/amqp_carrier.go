package otel

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

// AMQPHeadersCarrier lets the global propagator read and write trace context
// in AMQP message headers. Non-string header values are invisible to it.
type AMQPHeadersCarrier amqp.Table

func (c AMQPHeadersCarrier) Get(key string) string {
	s, _ := c[key].(string)
	return s
}

func (c AMQPHeadersCarrier) Set(key, value string) { c[key] = value }

func (c AMQPHeadersCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// InjectAMQP writes the span context of ctx into headers, allocating them when
// nil, and returns the table to publish with.
func InjectAMQP(ctx context.Context, headers amqp.Table) amqp.Table {
	if headers == nil {
		headers = amqp.Table{}
	}
	otel.GetTextMapPropagator().Inject(ctx, AMQPHeadersCarrier(headers))
	return headers
}
