package contact

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig describes the relay used to deliver contact messages.
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

// SMTPMailer sends contact messages through an SMTP relay.
type SMTPMailer struct {
	c SMTPConfig
}

// NewSMTPMailer returns a mailer for c.
func NewSMTPMailer(c SMTPConfig) (*SMTPMailer, error) {
	if c.Host == "" || c.From == "" || c.To == "" {
		return nil, fmt.Errorf("smtp: host, from and to are required")
	}
	if c.Port == 0 {
		c.Port = 587
	}
	return &SMTPMailer{c: c}, nil
}

// Send delivers one message, replying to the guest.
func (s *SMTPMailer) Send(ctx context.Context, replyTo string, subject string, body string) error {
	m := mail.NewMsg()
	if err := m.From(s.c.From); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if err := m.To(s.c.To); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if err := m.ReplyTo(replyTo); err != nil {
		return fmt.Errorf("reply-to: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.c.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(&tls.Config{ServerName: s.c.Host}),
	}
	if s.c.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.c.User),
			mail.WithPassword(s.c.Password),
		)
	}

	client, err := mail.NewClient(s.c.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client (host=%s port=%d): %w", s.c.Host, s.c.Port, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send (host=%s port=%d): %w", s.c.Host, s.c.Port, err)
	}
	return nil
}
