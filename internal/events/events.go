package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types published by the service
const (
	CampaignCreated          = "campaign.created"
	CampaignDeleted          = "campaign.deleted"
	IndividualCouponAssigned = "individual_coupon.assigned"
)

// Event is a domain event. CampaignID is used as the message key so every
// event of a campaign lands on the same partition.
type Event struct {
	Type               string    `json:"type"`
	CampaignID         string    `json:"campaign_id"`
	StoreID            string    `json:"store_id,omitempty"`
	IndividualCouponID string    `json:"individual_coupon_id,omitempty"`
	Code               string    `json:"code,omitempty"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// Publisher delivers domain events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Bounds on one synchronous publish
const (
	publishTimeout  = 3 * time.Second
	publishAttempts = 3
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			MaxAttempts:            publishAttempts,
			WriteBackoffMax:        250 * time.Millisecond,
			ReadTimeout:            time.Second,
			WriteTimeout:           time.Second,
			AllowAutoTopicCreation: true,
		},
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := message(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return k.writer.WriteMessages(ctx, msg)
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

func message(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.CampaignID),
		Value: value,
		Time:  event.OccurredAt,
	}, nil
}

// NopPublisher drops every event; used when no brokers are configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// New returns a Kafka publisher, or a NopPublisher when brokers is empty
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
