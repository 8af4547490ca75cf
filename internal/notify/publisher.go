// Package notify implements service.Notifier: a RabbitMQ publisher, an SMTP
// mailer and a log-only fallback.
package notify

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/cinema-booking-engine/internal/queue"
)

// Publisher queues notifications on RabbitMQ.  Each Send opens its own
// connection, declares the durable queue and publishes a persistent message.
type Publisher struct {
    url   string
    queue string
    log   *zap.Logger
}

// NewPublisher creates a Publisher for the given broker URL and queue.
func NewPublisher(url, queueName string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, queue: queueName, log: log}
}

// Send publishes an EmailEvent.  Errors are logged and returned so the
// caller can decide to ignore them.
func (p *Publisher) Send(ctx context.Context, to, subject, body string) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("rabbitmq: dial failed", zap.Error(err))
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        p.queue, // name
        true,    // durable
        false,   // autoDelete
        false,   // exclusive
        false,   // noWait
        nil,     // args
    ); err != nil {
        p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
        return fmt.Errorf("rabbitmq queue declare: %w", err)
    }

    payload, err := json.Marshal(queue.EmailEvent{
        To:       to,
        Subject:  subject,
        Body:     body,
        QueuedAt: time.Now().UTC().Format(time.RFC3339),
    })
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    if err := ch.PublishWithContext(pubCtx, "", p.queue, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now(),
        Body:         payload,
    }); err != nil {
        p.log.Warn("rabbitmq: publish failed", zap.Error(err))
        return fmt.Errorf("rabbitmq publish: %w", err)
    }
    return nil
}
