package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridTransport sends mail through the SendGrid v3 API
type SendGridTransport struct {
	key    string
	host   string
	client *rest.Client
}

func NewSendGridTransport(key string) *SendGridTransport {
	return &SendGridTransport{
		key:    key,
		host:   sendgridHost,
		client: &rest.Client{HTTPClient: &http.Client{Timeout: 15 * time.Second}},
	}
}

func (t *SendGridTransport) prepare(msg *Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(msg.FromName, msg.From))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", msg.HTML))

	return m
}

// Send builds the request with the sendgrid helpers and executes it on ctx,
// so cancelling the worker aborts an in-flight call.
func (t *SendGridTransport) Send(ctx context.Context, msg *Message) error {
	req := sendgrid.GetRequest(t.key, sendgridEndpoint, t.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(t.prepare(msg))

	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return fmt.Errorf("building email request: %w", err)
	}

	httpRes, err := t.client.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return fmt.Errorf("reading email response: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email - status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}
