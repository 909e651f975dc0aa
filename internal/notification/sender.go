package notification

import (
	"context"
	"fmt"

	"MentorDesk/internal/config"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Message is one outgoing HTML mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks the transport named by MAIL_PROVIDER.
func NewSender(cfg *config.AppConfig, log *zap.Logger) (Sender, error) {
	m := cfg.Mail
	switch m.Provider {
	case config.MailProviderSMTP:
		return NewSMTPSender(m), nil
	case config.MailProviderResend:
		return NewResendSender(m), nil
	case config.MailProviderLog:
		return &LogSender{log: log.Named("mail")}, nil
	}
	return nil, fmt.Errorf("unknown mail provider %q", m.Provider)
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(m config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(m.SMTPHost, m.SMTPPort, m.SMTPUser, m.SMTPPass),
		from:   m.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mail := gomail.NewMessage()
	mail.SetHeader("From", s.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(m config.MailConfig) *ResendSender {
	return &ResendSender{client: resend.NewClient(m.ResendAPIKey), from: m.From}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes mails to the log instead of delivering them. Used in
// development.
type LogSender struct {
	log *zap.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("mail",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("html", msg.HTML),
	)
	return nil
}
