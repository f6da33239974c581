package storage

import (
	"github.com/metropass/metropass-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Station operations. Deleting a station cascades to the connections and
	// tickets that reference it.
	CreateStation(station *models.Station) (*models.Station, error)
	GetStation(id uint) (*models.Station, error)
	GetAllStations() ([]*models.Station, error)
	DeleteStation(id uint) error

	// Line operations. Deleting a line cascades to its connections.
	CreateLine(line *models.Line) (*models.Line, error)
	GetLine(id uint) (*models.Line, error)
	GetAllLines() ([]*models.Line, error)
	SetLineActive(id uint, active bool) error
	DeleteLine(id uint) error

	// Connection operations. Creation enforces the (line, start, destination)
	// uniqueness invariant and rejects duplicates with ErrDuplicateConnection.
	CreateConnection(conn *models.Connection) (*models.Connection, error)
	GetConnection(id uint) (*models.Connection, error)
	GetAllConnections() ([]*models.Connection, error)
	DeleteConnection(id uint) error

	// GetNetworkSnapshot returns the full connection set plus the set of
	// active line IDs, read at a single consistent point so the costing
	// engine never sees a half-applied line toggle.
	GetNetworkSnapshot() ([]*models.Connection, map[uint]bool, error)

	// Passenger operations. Deleting a passenger cascades to its tickets and
	// OTP records.
	CreatePassenger(reg *models.PassengerRegistration) (*models.Passenger, error)
	GetPassenger(id uint) (*models.Passenger, error)
	GetPassengerByExternalID(externalID string) (*models.Passenger, error)
	AddBalance(passengerID uint, amount float64) (*models.Passenger, error)
	DeletePassenger(id uint) error

	// Ticket operations.
	CreateTicket(ticket *models.Ticket) (*models.Ticket, error)
	GetTicketByTicketID(ticketID string) (*models.Ticket, error)
	GetTicketForPassenger(ticketID string, passengerID uint) (*models.Ticket, error)
	GetTicketsByPassenger(passengerID uint) ([]*models.Ticket, error)
	UpdateTicketStatus(ticketID string, status string) error

	// ActivateTicket flips a pending ticket to active and debits its cost
	// from the owning passenger in one atomic step. The ticket must be
	// pending (ErrTicketNotPending otherwise) and the balance must cover the
	// cost (ErrInsufficientBalance); on any failure neither the status nor
	// the balance changes. Concurrent calls for the same ticket debit once.
	ActivateTicket(ticketID string) (*models.Ticket, error)

	// OTP operations. Records are append-only; the most recent record for a
	// (passenger, code) pair wins on lookup.
	CreateOTPRecord(rec *models.OTPRecord) (*models.OTPRecord, error)
	GetLatestOTP(passengerID uint, code string) (*models.OTPRecord, error)
}
