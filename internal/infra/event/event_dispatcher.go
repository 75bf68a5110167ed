package event

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/DioGolang/GoPlaces/pkg/events"
	carrier "github.com/DioGolang/GoPlaces/pkg/otel"
)

const DefaultExchange = "places.events"

// Publisher is the part of *amqp.Channel the dispatcher needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Dispatcher publishes events to a topic exchange, routed by event name,
// with the trace context carried in the message headers.
type Dispatcher struct {
	channel  Publisher
	exchange string
}

func NewDispatcher(ch Publisher, exchange string) *Dispatcher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Dispatcher{channel: ch, exchange: exchange}
}

// DeclareExchange creates the topic exchange if it does not exist yet.
func DeclareExchange(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
}

func (d *Dispatcher) Dispatch(ctx context.Context, event events.Event) error {
	headers := carrier.InjectAMQP(ctx, amqp.Table{"event_id": eventID(event)})

	payload, err := json.Marshal(event.GetPayload())
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event.GetName(), err)
	}

	err = d.channel.PublishWithContext(
		ctx,
		d.exchange,
		event.GetName(),
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.GetDateTime().UTC(),
			Type:         event.GetName(),
			Body:         payload,
		})
	if err != nil {
		return fmt.Errorf("publishing %s: %w", event.GetName(), err)
	}
	return nil
}

// eventID tags messages so consumers can drop redeliveries.
func eventID(event events.Event) string {
	if e, ok := event.(interface{ GetID() string }); ok {
		return e.GetID()
	}
	return ""
}
