package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/tableorder/internal/middleware"
)

const EventsExchange = "tableorder.events"

// Publisher is the subset of *amqp.Channel the notifier uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitNotifier struct {
	ch      Publisher
	logger  *log.Logger
	timeout time.Duration
}

func NewRabbitNotifier(conn *amqp.Connection, logger *log.Logger) (*RabbitNotifier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return newRabbitNotifier(ch, logger), nil
}

func newRabbitNotifier(ch Publisher, logger *log.Logger) *RabbitNotifier {
	return &RabbitNotifier{ch: ch, logger: logger, timeout: 3 * time.Second}
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

func (r *RabbitNotifier) Close() error {
	return r.ch.Close()
}

func (r *RabbitNotifier) Notify(ctx context.Context, n Notice) {
	if err := r.publish(ctx, n); err != nil {
		r.logger.Printf("publish %s notice: %v", n.Kind, err)
	}
}

func (r *RabbitNotifier) publish(ctx context.Context, n Notice) error {
	env := newEnvelope(stamp(n), middleware.GetCorrelationID(ctx))
	if err := env.Validate(); err != nil {
		return fmt.Errorf("invalid envelope: %w", err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	return r.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey(n.Kind),
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     env.EventID,
			CorrelationId: env.CorrelationID,
			Timestamp:     env.OccurredAt,
			Body:          body,
		},
	)
}

// DialRabbit connects to the broker. An empty url returns a nil connection:
// notifications then stay log-only.
func DialRabbit(url string) (*amqp.Connection, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}
