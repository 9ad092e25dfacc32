// Package notify announces saved progress to other services over AMQP.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
	"github.com/streadway/amqp"
)

// DefaultExchange is the topic exchange progress events go to.
const DefaultExchange = "progress_updates"

// Publisher delivers progress events.
type Publisher interface {
	Publish(ctx context.Context, e model.ProgressUpdated) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, model.ProgressUpdated) error { return nil }
func (Nop) Close() error                                         { return nil }

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes JSON events to a topic exchange with routing key
// "progress.<userId>".
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
	log      logger.Logger

	mu sync.Mutex // amqp channels are not safe for concurrent publishes
	ch channel
}

// Dial connects to url and declares a durable topic exchange.
func Dial(url, exchange string, log logger.Logger) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	p := newPublisher(ch, exchange, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log logger.Logger) *AMQPPublisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &AMQPPublisher{ch: ch, exchange: exchange, log: log.Named("notify")}
}

// RoutingKey returns the routing key for a user's events.
func RoutingKey(userID string) string { return "progress." + userID }

func (p *AMQPPublisher) Publish(ctx context.Context, e model.ProgressUpdated) error { //nolint:gocritic // event is small and copied once
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode progress event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if id := logger.RequestID(ctx); id != "" {
		msg.CorrelationId = id
	}

	p.mu.Lock()
	err = p.ch.Publish(p.exchange, RoutingKey(e.UserID), false, false, msg)
	p.mu.Unlock()

	if err != nil {
		metrics.RecordNotification("error")
		p.log.Warn(ctx, "progress event not published", logger.String("userId", e.UserID), logger.Error(err))
		return fmt.Errorf("publish progress event: %w", err)
	}
	metrics.RecordNotification("ok")
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
