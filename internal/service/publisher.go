package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/queue"
)

// dialTimeout bounds the broker connect and handshake when ctx has no
// earlier deadline.
const dialTimeout = 3 * time.Second

// RecordPublisher announces stored monitoring records on the broker.  A
// publisher without a URL drops events, so the API keeps working without
// RabbitMQ.
type RecordPublisher struct {
	url string
	log *zap.Logger
}

func NewRecordPublisher(url string, log *zap.Logger) *RecordPublisher {
	return &RecordPublisher{url: url, log: log}
}

// Enabled reports whether events are actually sent.
func (p *RecordPublisher) Enabled() bool { return p.url != "" }

// PublishRecordCreated sends ev to the record.created queue as a persistent
// JSON message.  Errors are logged and returned; callers treat them as
// non-fatal.
func (p *RecordPublisher) PublishRecordCreated(ctx context.Context, ev queue.RecordCreatedEvent) error {
	if !p.Enabled() {
		return nil
	}
	if err := p.publish(ctx, queue.RecordCreatedQueue, ev); err != nil {
		p.log.Warn("publish event failed",
			zap.String("queue", queue.RecordCreatedQueue),
			zap.Uint64("record_id", ev.RecordID),
			zap.Error(err))
		return err
	}
	return nil
}

func (p *RecordPublisher) publish(ctx context.Context, queueName string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Locale: "en_US", Dial: contextDialer(ctx)})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	return ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// contextDialer connects with ctx so a cancelled request stops the dial.  The
// deadline also covers the AMQP handshake; the client clears it once open.
func contextDialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline := time.Now().Add(dialTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		d := net.Dialer{Deadline: deadline}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
