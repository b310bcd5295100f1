// Package analytics publishes game events to Kafka.
package analytics

import (
    "context"
    "encoding/json"
    "log"
    "time"

    "github.com/segmentio/kafka-go"
)

// Event is the JSON envelope written to the topic.
type Event struct {
    Event     string         `json:"event"`
    Payload   map[string]any `json:"payload"`
    Timestamp time.Time      `json:"timestamp"`
}

type messageWriter interface {
    WriteMessages(ctx context.Context, msgs ...kafka.Message) error
    Close() error
}

// Producer writes events asynchronously. A nil Producer drops everything.
type Producer struct {
    writer messageWriter
    now    func() time.Time
}

// NewProducer returns nil when brokers or topic are missing.
func NewProducer(brokers []string, topic string) *Producer {
    if len(brokers) == 0 || topic == "" {
        return nil
    }
    writer := &kafka.Writer{
        Addr:                   kafka.TCP(brokers...),
        Topic:                  topic,
        Balancer:               &kafka.Hash{},
        AllowAutoTopicCreation: true,
        Async:                  true,
        BatchTimeout:           50 * time.Millisecond,
        Completion: func(messages []kafka.Message, err error) {
            if err != nil {
                log.Printf("kafka publish failed (%d messages): %v", len(messages), err)
            }
        },
    }
    return &Producer{writer: writer, now: time.Now}
}

// Publish sends event keyed by the game id in payload["game_id"], if any.
func (p *Producer) Publish(ctx context.Context, event string, payload map[string]any) {
    if p == nil || p.writer == nil {
        return
    }
    data, err := json.Marshal(Event{Event: event, Payload: payload, Timestamp: p.now().UTC()})
    if err != nil {
        log.Printf("kafka encode %s failed: %v", event, err)
        return
    }
    msg := kafka.Message{Value: data}
    if id, ok := payload["game_id"].(string); ok {
        msg.Key = []byte(id)
    }
    if err := p.writer.WriteMessages(ctx, msg); err != nil {
        log.Printf("kafka publish failed: %v", err)
    }
}

func (p *Producer) Close() {
    if p == nil || p.writer == nil {
        return
    }
    _ = p.writer.Close()
}
