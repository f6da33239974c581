package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Ticket statuses. A ticket moves strictly forward:
//
//	pending — purchased online, awaiting OTP confirmation and payment
//	active  — fare debited, awaiting boarding
//	in use  — scanned at the incoming platform (or issued offline)
//	expired — scanned at the outgoing platform, journey complete
const (
	TicketStatusPending = "pending"
	TicketStatusActive  = "active"
	TicketStatusInUse   = "in use"
	TicketStatusExpired = "expired"
)

// Ticket is a single journey between two stations. Cost is computed by the
// route costing engine when the ticket is created and never changes
// afterwards; the amount debited at confirmation is always the stored cost.
type Ticket struct {
	gorm.Model

	TicketID string `json:"ticket_id" gorm:"uniqueIndex"`

	PassengerID          uint `json:"passenger_id" gorm:"not null;index"`
	StartStationID       uint `json:"start_station_id" gorm:"not null"`
	DestinationStationID uint `json:"destination_station_id" gorm:"not null"`

	Cost   float64 `json:"cost"`
	Status string  `json:"status" gorm:"default:pending"`
}

// BeforeCreate generates the rider-facing ticket number.
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.TicketID == "" {
		t.TicketID = fmt.Sprintf("TK%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	if t.Status == "" {
		t.Status = TicketStatusPending
	}
	return nil
}
