package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/dmitrijs2005/researchdt/internal/logging"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c SMTPConfig) configured() bool {
	return c.Host != "" && c.From != ""
}

// SMTPNotifier sends payloads as plain-text email.
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger logging.Logger
	send   func(m *gomail.Message) error
}

func NewSMTPNotifier(cfg SMTPConfig, logger logging.Logger) *SMTPNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &SMTPNotifier{
		cfg:    cfg,
		logger: logger,
		send:   func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

// Notify fails with common.ErrNotificationFailed when SMTP is not configured
// or the server rejects the message.
func (n *SMTPNotifier) Notify(ctx context.Context, recipient string, payload Payload) error {
	if !n.cfg.configured() {
		return fmt.Errorf("%w: smtp not configured", common.ErrNotificationFailed)
	}
	if strings.TrimSpace(recipient) == "" {
		return fmt.Errorf("%w: empty recipient", common.ErrNotificationFailed)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", payload.Subject)
	m.SetBody("text/plain", payload.Body)

	if err := n.send(m); err != nil {
		return fmt.Errorf("%w: send email: %v", common.ErrNotificationFailed, err)
	}

	n.logger.Info(ctx, "email sent", "to", recipient, "subject", payload.Subject)
	return nil
}
