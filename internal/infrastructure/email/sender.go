package email

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

// Sender delivers queued notification emails over SMTP.
type Sender struct {
	client *mail.Client
	from   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSender(cfg SMTPConfig) (*Sender, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Sender{client: client, from: cfg.From}, nil
}

func (s *Sender) Send(ctx context.Context, msg domain.EmailMessage) error {
	subject, body, err := render(msg)
	if err != nil {
		return err
	}

	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return domain.WrapError(domain.ErrTemporary, "send email", err)
	}
	return nil
}
