package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers notifications through Twilio.
type SMSSender struct {
	client *twilio.RestClient
	from   string
}

// NewSMSSender constructs a Twilio-backed sender. from is the provisioned
// sending number.
func NewSMSSender(accountSID, authToken, from string) *SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSSender{client: client, from: from}
}

func (s *SMSSender) Channel() string { return ChannelSMS }

func (s *SMSSender) Deliver(_ context.Context, n Notification) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(n.Recipient.Phone)
	params.SetFrom(s.from)
	params.SetBody(Body(n))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}
