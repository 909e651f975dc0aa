package notification

import (
	"context"
	"fmt"

	"MentorDesk/internal/credential"
)

// Mailer composes the account mails (password reset, set password) and hands
// them to a Sender.
type Mailer struct {
	sender Sender
}

func NewMailer(sender Sender) *Mailer {
	return &Mailer{sender: sender}
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	html, err := render(resetPasswordTmpl, resetPasswordData{
		URL:    resetURL,
		Expiry: "10 minutes",
	})
	if err != nil {
		return fmt.Errorf("render reset mail: %w", err)
	}
	return m.sender.Send(ctx, Message{To: to, Subject: "Password Reset Request", HTML: html})
}

// SendSetPassword invites a freshly provisioned account to choose a password.
func (m *Mailer) SendSetPassword(ctx context.Context, to, name, role, institute, setURL string) error {
	html, err := render(setPasswordTmpl, setPasswordData{
		Name:      name,
		Role:      role,
		Institute: institute,
		URL:       setURL,
		Expiry:    fmt.Sprintf("%d hours", int(credential.ProvisioningTTL.Hours())),
	})
	if err != nil {
		return fmt.Errorf("render set password mail: %w", err)
	}
	return m.sender.Send(ctx, Message{To: to, Subject: "Set Your Password", HTML: html})
}
