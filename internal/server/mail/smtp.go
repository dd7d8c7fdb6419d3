package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer sends verification emails through a configured SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	from   string
	window time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
	From     string
}

func NewSMTPMailer(cfg SMTPConfig, window time.Duration) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.User),
		gomail.WithPassword(cfg.Password),
	}
	if cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From, window: window}, nil
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, code int64, to string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}

	msg.Subject("Verify your email address")
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Your verification code is %d.\n\nIt expires in %s. If you did not request this, ignore this message.\n",
		code, m.window))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
