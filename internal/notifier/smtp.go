package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const implicitTLSPort = 465

// SMTPTransport sends mail over SMTP with PLAIN auth.
// Port 465 uses implicit TLS; other ports rely on STARTTLS.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
}

func NewSMTPTransport(host string, port int, username, password string) *SMTPTransport {
	return &SMTPTransport{
		host:     host,
		port:     port,
		username: username,
		password: password,
		timeout:  15 * time.Second,
	}
}

func (t *SMTPTransport) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: t.host, MinVersion: tls.VersionTLS12}
}

// dial bounds the whole SMTP session by the transport timeout and ctx
func (t *SMTPTransport) dial(ctx context.Context, addr string) (net.Conn, error) {
	netDialer := &net.Dialer{Timeout: t.timeout}

	var (
		conn net.Conn
		err  error
	)
	if t.port == implicitTLSPort {
		conn, err = (&tls.Dialer{NetDialer: netDialer, Config: t.tlsConfig()}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = netDialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(t.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))

	conn, err := t.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Close()

	if t.port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(t.tlsConfig()); err != nil {
				return fmt.Errorf("smtp STARTTLS failed: %w", err)
			}
		}
	}

	if t.username != "" {
		if err := client.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}
	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(buildMIMEMessage(msg)); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return client.Quit()
}

func buildMIMEMessage(msg *Message) []byte {
	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.FromName), msg.From)
	}

	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		from,
		msg.To,
		mime.QEncoding.Encode("utf-8", msg.Subject),
		msg.HTML,
	))
}
