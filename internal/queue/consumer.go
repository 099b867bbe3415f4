package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// AuditConsumer reads booking events from the durable queue and appends
// one line per event to <Dir>/booking.log.
type AuditConsumer struct {
    URL    string
    Queue  string
    Dir    string
    Logger *slog.Logger
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Broker
// failures trigger a reconnect with exponential backoff capped at 30s.
// Malformed messages are rejected without requeue so the server keeps
// operating.
func (a *AuditConsumer) Run(ctx context.Context) error {
    logger := a.Logger
    if logger == nil {
        logger = slog.Default()
    }
    logger = logger.With("component", "booking-audit", "queue", a.Queue)

    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(a.URL)
        if err != nil {
            logger.Warn("dial broker failed", "error", err, "retry_in", backoff.String())
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = a.consumeLoop(ctx, conn, logger)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logger.Warn("consume loop ended, reconnecting", "error", err)
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (a *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection, logger *slog.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logger.Warn("set QoS failed", "error", err)
    }
    if _, err := ch.QueueDeclare(a.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, a.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := WriteAuditLine(a.Dir, d.Body); err != nil {
            logger.Error("handle message failed", "error", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// WriteAuditLine decodes one BookingEvent and appends it to dir/booking.log.
func WriteAuditLine(dir string, body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.BookingID == "" {
        return errors.New("event missing type or booking_id")
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", dir, err)
    }
    f, err := os.OpenFile(filepath.Join(dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    line := fmt.Sprintf("[%s] %s | booking_id=%s | slot_id=%s | advertiser_id=%d | advertiser=%q | channel=%q | slot=%q | status=%s | price=%d cents\n",
        ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.BookingID, ev.SlotID, ev.AdvertiserID,
        ev.AdvertiserName, ev.ChannelName, ev.SlotTitle, ev.Status, ev.PriceCents)
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
