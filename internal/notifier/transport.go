package notifier

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/config"
)

// Message is a rendered email ready for delivery
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
}

// Transport delivers a rendered message
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// NewTransport selects the mail transport named by the configuration
func NewTransport(cfg config.MailConfig) (Transport, error) {
	switch cfg.Provider {
	case config.MailProviderSendGrid:
		return NewSendGridTransport(cfg.SendGridAPIKey), nil
	case config.MailProviderSMTP, "":
		return NewSMTPTransport(cfg.Host, cfg.Port, cfg.Username, cfg.Password), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
