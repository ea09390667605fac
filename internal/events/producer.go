// Package events publishes domain events (logins, check-ins, backup runs)
// to a Kafka topic. The producer is optional: a nil *Producer is a no-op,
// and publishing is best-effort so a broker outage never fails a request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/echotube/echotube/internal/logging"
)

const (
	TypeLogin        = "auth.login"
	TypeLoginFailed  = "auth.login_failed"
	TypeVideoCreated = "video.created"
	TypeVideoDeleted = "video.deleted"
	TypeCheckIn      = "video.checkin"
	TypeBackupExport = "backup.export"
	TypeBackupImport = "backup.import"
)

type Event struct {
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

type Producer struct {
	writer *kafka.Writer
}

// New builds a producer for the given brokers. Returns nil when no brokers
// are configured, which callers treat as "events disabled".
func New(brokers []string, topic string) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
	}
}

// Publish sends one event, logging delivery failures instead of returning
// them: the event stream is an observer, not a participant.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload any) {
	if p == nil {
		return
	}
	l := logging.FromContext(ctx).With("component", "events")

	event := Event{
		Type:      eventType,
		Key:       key,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		l.Error("event_marshal_failed", "type", eventType, "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%s:%s", eventType, key)),
		Value: data,
	}); err != nil {
		l.Error("event_publish_failed", "type", eventType, "error", err)
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
