package config

import (
	"errors"
	"fmt"
)

const (
	MailProviderSMTP   = "smtp"
	MailProviderResend = "resend"
	MailProviderLog    = "log"
)

// MailConfig selects and configures the outgoing mail transport.
type MailConfig struct {
	Provider     string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	ResendAPIKey string
	From         string
}

func (m MailConfig) validate() error {
	switch m.Provider {
	case MailProviderSMTP:
		if m.SMTPHost == "" {
			return errors.New("SMTP_HOST is required when MAIL_PROVIDER=smtp")
		}
	case MailProviderResend:
		if m.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY is required when MAIL_PROVIDER=resend")
		}
	case MailProviderLog:
	default:
		return fmt.Errorf("MAIL_PROVIDER %q is not one of smtp, resend, log", m.Provider)
	}
	return nil
}
