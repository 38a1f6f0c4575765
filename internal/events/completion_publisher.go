package events

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// CompletionPublisher hands completion notices to the notification worker through the bus
type CompletionPublisher struct {
	publisher EventPublisher
	topic     string
}

func NewCompletionPublisher(publisher EventPublisher, topic string) *CompletionPublisher {
	if topic == "" {
		topic = TypeCertificateIssued
	}
	return &CompletionPublisher{publisher: publisher, topic: topic}
}

func (p *CompletionPublisher) Dispatch(ctx context.Context, notice *models.CompletionNotice) error {
	event, err := NewEvent(TypeCertificateIssued, notice)
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(ctx, p.topic, event); err != nil {
		return fmt.Errorf("failed to dispatch completion notice for certificate %s: %w", notice.CertificateID, err)
	}
	return nil
}

func (p *CompletionPublisher) Topic() string {
	return p.topic
}
