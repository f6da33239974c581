package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/metropass/metropass-backend/internal/config"
	"github.com/metropass/metropass-backend/internal/models"
)

// TwilioService sends passenger-facing SMS via Twilio. It implements
// Notifier for the OTP confirmation gate.
type TwilioService struct {
	client *twilio.RestClient
	from   string
	window int // OTP validity in minutes, for the message text
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg config.Twilio, otpWindowMinutes int) (*TwilioService, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioService{
		client: client,
		from:   cfg.From,
		window: otpWindowMinutes,
	}, nil
}

// NotifyOTP sends the confirmation code to the passenger's phone.
func (t *TwilioService) NotifyOTP(passenger *models.Passenger, code string) error {
	message := fmt.Sprintf(
		"Your OTP is %s, use it to verify the ticket purchase, expires in %d minutes",
		code, t.window)
	return t.SendSMS(passenger.Phone, message)
}

// SendSMS sends a plain text message via Twilio
func (t *TwilioService) SendSMS(to string, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send SMS: %v", err)
		return err
	}

	log.Printf("✅ SMS sent! SID: %s", *resp.Sid)
	return nil
}
