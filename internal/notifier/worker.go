package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/reporting"
)

// Sender delivers one completion notice
type Sender interface {
	Send(ctx context.Context, notice *models.CompletionNotice) error
}

// Worker consumes certificate.issued events and sends the completion email.
// Failed deliveries are reported and acked; there is no retry.
type Worker struct {
	router   *message.Router
	sender   Sender
	reporter reporting.ErrorReporter
	logger   *slog.Logger
}

func NewWorker(subscriber message.Subscriber, topic string, sender Sender, reporter reporting.ErrorReporter, logger *slog.Logger) (*Worker, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	w := &Worker{
		router:   router,
		sender:   sender,
		reporter: reporter,
		logger:   logger,
	}
	router.AddNoPublisherHandler("completion_email", topic, subscriber, w.handle)

	return w, nil
}

func (w *Worker) handle(msg *message.Message) error {
	ctx := msg.Context()

	event, err := events.DecodeMessage(msg)
	if err != nil {
		w.reporter.Report(ctx, err, map[string]interface{}{"message_id": msg.UUID})
		return nil
	}
	if event.Type != events.TypeCertificateIssued {
		w.logger.Debug("Skipping event", "event_type", event.Type, "event_id", event.ID)
		return nil
	}

	var notice models.CompletionNotice
	if err := event.DecodeData(&notice); err != nil {
		w.reporter.Report(ctx, err, map[string]interface{}{"event_id": event.ID})
		return nil
	}

	if err := w.sender.Send(ctx, &notice); err != nil {
		w.reporter.Report(ctx, err, map[string]interface{}{
			"event_id":       event.ID,
			"certificate_id": notice.CertificateID,
			"user_id":        notice.UserID,
		})
	}
	return nil
}

// Run blocks until ctx is cancelled or the router is closed
func (w *Worker) Run(ctx context.Context) error {
	return w.router.Run(ctx)
}

// Running is closed once the router has started its handlers
func (w *Worker) Running() chan struct{} {
	return w.router.Running()
}

func (w *Worker) Close() error {
	return w.router.Close()
}
