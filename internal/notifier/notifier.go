package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/models"
)

var ErrNoRecipient = errors.New("completion notice has no recipient")

// Notifier renders completion notices and hands them to a transport
type Notifier struct {
	transport Transport
	from      string
	fromName  string
	baseURL   string
	logger    *slog.Logger
}

func NewNotifier(transport Transport, cfg config.MailConfig, logger *slog.Logger) *Notifier {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Notifier{
		transport: transport,
		from:      from,
		fromName:  cfg.FromName,
		baseURL:   cfg.PublicBaseURL,
		logger:    logger,
	}
}

// Send delivers the completion email for one notice
func (n *Notifier) Send(ctx context.Context, notice *models.CompletionNotice) error {
	if notice.RecipientEmail == "" {
		return ErrNoRecipient
	}

	html, err := RenderCompletionEmail(NewCompletionEmailData(notice, n.baseURL))
	if err != nil {
		return err
	}

	msg := &Message{
		From:     n.from,
		FromName: n.fromName,
		To:       notice.RecipientEmail,
		Subject:  CompletionSubject,
		HTML:     html,
	}
	if err := n.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to deliver completion email for certificate %s: %w", notice.CertificateID, err)
	}

	n.logger.InfoContext(ctx, "Completion email sent",
		"certificate_id", notice.CertificateID,
		"course_id", notice.CourseID,
		"user_id", notice.UserID)
	return nil
}
