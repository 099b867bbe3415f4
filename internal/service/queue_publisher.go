package service

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/tv-ad-booking/internal/queue"
)

// EventPublisher emits booking events.  Failures are reported to the caller,
// which logs and ignores them.
type EventPublisher interface {
    Publish(ctx context.Context, ev q.BookingEvent) error
}

// NopPublisher drops every event.  Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.BookingEvent) error { return nil }

// AMQPPublisher holds one connection and channel for the process lifetime
// and publishes persistent JSON messages to a durable queue through the
// default exchange.
type AMQPPublisher struct {
    mu    sync.Mutex
    conn  *amqp.Connection
    ch    *amqp.Channel
    queue string
}

// NewAMQPPublisher dials the broker and declares the queue (idempotent).
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
    conn, err := amqp.Dial(url)
    if err != nil {
        return nil, fmt.Errorf("dial rabbitmq: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("open channel: %w", err)
    }
    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, fmt.Errorf("declare queue: %w", err)
    }
    return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// Publish marshals ev and sends it with the event type as message type.
func (p *AMQPPublisher) Publish(ctx context.Context, ev q.BookingEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Type:         ev.Type,
        MessageId:    ev.BookingID + ":" + ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch == nil || p.ch.IsClosed() {
        return fmt.Errorf("publish %s: channel closed", ev.Type)
    }
    if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        return fmt.Errorf("publish %s: %w", ev.Type, err)
    }
    return nil
}

func (p *AMQPPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        return p.conn.Close()
    }
    return nil
}
