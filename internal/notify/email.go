package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender delivers notifications through SendGrid.
type EmailSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewEmailSender constructs a SendGrid-backed sender. from is the verified
// sender address.
func NewEmailSender(apiKey, from string) *EmailSender {
	return &EmailSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("CityLine", from),
	}
}

func (s *EmailSender) Channel() string { return ChannelEmail }

func (s *EmailSender) Deliver(ctx context.Context, n Notification) error {
	to := mail.NewEmail("", n.Recipient.Email)
	body := Body(n)
	message := mail.NewSingleEmail(s.from, Subject(n), to, body, body)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("send email: sendgrid returned status %d", response.StatusCode)
	}
	return nil
}
