package provider

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
)

const (
	defaultSendTimeout = 10 * time.Second
	smtpPoolSize       = 4
)

// SMTPSender delivers campaign email through a plain SMTP relay. A shared
// connection pool keeps relay connections open across sends; the pool is
// safe for use by concurrent delivery workers.
type SMTPSender struct {
	addr    string
	auth    smtp.Auth
	pool    *email.Pool
	timeout time.Duration
}

func NewSMTPSender(addr, username, password string) (*SMTPSender, error) {
	trimmedAddr := strings.TrimSpace(addr)
	if trimmedAddr == "" {
		return nil, fmt.Errorf("smtp address is required")
	}

	host := trimmedAddr
	if idx := strings.LastIndex(trimmedAddr, ":"); idx > 0 {
		host = trimmedAddr[:idx]
	}

	var auth smtp.Auth
	if strings.TrimSpace(username) != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	pool, err := email.NewPool(trimmedAddr, smtpPoolSize, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp pool: %w", err)
	}

	return &SMTPSender{
		addr:    trimmedAddr,
		auth:    auth,
		pool:    pool,
		timeout: defaultSendTimeout,
	}, nil
}

// Close tears down the pooled relay connections.
func (s *SMTPSender) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s == nil {
		return fmt.Errorf("sender is not initialized")
	}
	if err := validateMessage(msg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &SendError{Recipient: msg.To, Cause: err}
	}

	e := email.NewEmail()
	e.From = formatAddress(msg.FromName, msg.FromEmail)
	e.To = []string{formatAddress(msg.ToName, msg.To)}
	e.Subject = msg.Subject
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}
	if msg.Text != "" {
		e.Text = []byte(msg.Text)
	}

	// jordan-wright/email has no context support; the pool send bounds
	// dial+send with a timeout instead.
	if err := s.pool.Send(e, s.timeout); err != nil {
		return &SendError{Recipient: msg.To, Cause: err}
	}

	return nil
}

func validateMessage(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient address is required")
	}
	if strings.TrimSpace(msg.FromEmail) == "" {
		return fmt.Errorf("sender address is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if msg.HTML == "" && msg.Text == "" {
		return fmt.Errorf("message body is required")
	}
	return nil
}

func formatAddress(name, addr string) string {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", trimmedName, addr)
}
