package service

import (
	"fmt"

	"github.com/resend/resend-go/v2"
)

// EmailSender delivers transactional auth emails.
type EmailSender interface {
	SendVerificationEmail(email, name, token string) error
	SendPasswordResetEmail(email, name, token string) error
	SendWelcomeEmail(email, name string) error
}

// ResendEmailService sends emails through the Resend API.
type ResendEmailService struct {
	client  *resend.Client
	from    string
	baseURL string
}

// NewEmailService creates a Resend-backed sender. With an empty API key it
// returns nil and email delivery is skipped.
func NewEmailService(apiKey, from, baseURL string) EmailSender {
	if apiKey == "" {
		return nil
	}
	return &ResendEmailService{
		client:  resend.NewClient(apiKey),
		from:    from,
		baseURL: baseURL,
	}
}

func (s *ResendEmailService) SendVerificationEmail(email, name, token string) error {
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", s.baseURL, token)
	return s.send(email, "Verify your email", fmt.Sprintf(
		"<p>Hi %s,</p><p>Confirm your email address by clicking <a href=%q>this link</a>.</p>",
		name, link,
	))
}

func (s *ResendEmailService) SendPasswordResetEmail(email, name, token string) error {
	link := fmt.Sprintf("%s/auth/reset-password?token=%s", s.baseURL, token)
	return s.send(email, "Reset your password", fmt.Sprintf(
		"<p>Hi %s,</p><p>Reset your password by clicking <a href=%q>this link</a>. The link expires in one hour.</p>",
		name, link,
	))
}

func (s *ResendEmailService) SendWelcomeEmail(email, name string) error {
	return s.send(email, "Welcome to Pennywise", fmt.Sprintf(
		"<p>Hi %s,</p><p>Your email is verified. Happy budgeting!</p>", name,
	))
}

func (s *ResendEmailService) send(to, subject, html string) error {
	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
