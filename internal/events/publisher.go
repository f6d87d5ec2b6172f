package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeFollow   = "follow"
	TypeUnfollow = "unfollow"
)

// FollowEvent announces a committed follow or unfollow.
type FollowEvent struct {
	Type         string    `json:"type"`
	UserID       string    `json:"user_id"`
	TargetUserID string    `json:"target_userid"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher delivers follow events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event FollowEvent) error
	Close() error
}

// KafkaPublisher writes events keyed by the target user so that all events
// about one user land on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a KafkaPublisher for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event FollowEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TargetUserID),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, FollowEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
