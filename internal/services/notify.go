package services

import (
	"log"

	"github.com/metropass/metropass-backend/internal/models"
)

// Notifier delivers confirmation codes to passengers. Delivery failures are
// surfaced to the caller but never roll back code issuance.
type Notifier interface {
	NotifyOTP(passenger *models.Passenger, code string) error
}

// LogNotifier writes codes to the process log instead of sending them.
// Used with the memory store for local development and tests.
type LogNotifier struct{}

func (LogNotifier) NotifyOTP(passenger *models.Passenger, code string) error {
	log.Printf("📨 OTP for passenger %s: %s", passenger.ExternalID, code)
	return nil
}
