package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/SAP-F-2025/learning-service/internal/config"
)

// PubSub is the publisher/subscriber pair backing asynchronous work
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Backend    string
}

// NewPubSub builds a Kafka pub/sub when brokers are configured, otherwise an in-process channel
func NewPubSub(cfg config.EventsConfig, logger *slog.Logger) (*PubSub, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if len(cfg.KafkaBrokers) == 0 {
		channel := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &PubSub{Publisher: channel, Subscriber: channel, Backend: "gochannel"}, nil
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       cfg.KafkaBrokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: cfg.ConsumerGroup,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	return &PubSub{Publisher: publisher, Subscriber: subscriber, Backend: "kafka"}, nil
}

// Close closes the publisher and, when distinct, the subscriber
func (p *PubSub) Close() error {
	err := p.Publisher.Close()
	if p.Backend == "gochannel" {
		return err
	}
	if subErr := p.Subscriber.Close(); subErr != nil && err == nil {
		err = subErr
	}
	return err
}

// WatermillEventPublisher publishes envelopes as Watermill messages
type WatermillEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewWatermillEventPublisher(publisher message.Publisher, logger *slog.Logger) *WatermillEventPublisher {
	return &WatermillEventPublisher{publisher: publisher, logger: logger}
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "topic", topic, "event_id", event.ID, "event_type", event.Type)
	return nil
}

// Close is a no-op; the underlying publisher is owned by PubSub
func (p *WatermillEventPublisher) Close() error {
	return nil
}

// DecodeMessage parses a Watermill message payload into an envelope
func DecodeMessage(msg *message.Message) (*Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event %s: %w", msg.UUID, err)
	}
	return &event, nil
}
