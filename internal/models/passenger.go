package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Passenger is a rider with a balance ledger. One passenger exists per
// external identity (the account system in front of this service); tickets
// and OTP records belong to the passenger and are deleted with it.
//
// Balance may never be driven negative by a committed debit; the confirm
// step re-checks it inside the same transaction that flips the ticket.
type Passenger struct {
	gorm.Model

	ExternalID string  `json:"external_id" gorm:"uniqueIndex"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone" gorm:"index"`
	Balance    float64 `json:"balance" gorm:"default:0"`
}

// BeforeCreate assigns the external identity if the caller did not supply one.
func (p *Passenger) BeforeCreate(tx *gorm.DB) error {
	if p.ExternalID == "" {
		p.ExternalID = uuid.NewString()
	}
	return nil
}

// PassengerRegistration is the payload for creating a new passenger.
type PassengerRegistration struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone"`
	ExternalID string `json:"external_id"`
}
