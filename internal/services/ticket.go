package services

import (
	"fmt"

	"github.com/metropass/metropass-backend/internal/graph"
	"github.com/metropass/metropass-backend/internal/models"
	"github.com/metropass/metropass-backend/internal/storage"
)

// Scanner messages shown at the platforms.
const (
	MsgScannedIn        = "Scanned and updated successfully"
	MsgAlreadyScanned   = "Already scanned"
	MsgJourneyCompleted = "Journey completed"
)

// TicketService drives the ticket lifecycle: pricing, purchase, OTP-gated
// confirmation and platform scans.
type TicketService struct {
	store storage.Store
	otp   *OTPService
}

func NewTicketService(store storage.Store, otp *OTPService) *TicketService {
	return &TicketService{store: store, otp: otp}
}

// PriceRoute prices the cheapest-by-distance route between two stations over
// the currently active lines. Both stations must exist; a start equal to the
// destination prices as a trivial zero route.
//
// The graph is rebuilt from a fresh snapshot on every call so that line
// toggles misprice nothing.
func (s *TicketService) PriceRoute(startID, destID uint) (*graph.Route, error) {
	if _, err := s.store.GetStation(startID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetStation(destID); err != nil {
		return nil, err
	}

	conns, active, err := s.store.GetNetworkSnapshot()
	if err != nil {
		return nil, err
	}
	return graph.Build(conns, active).FindRoute(startID, destID)
}

// CreatePendingTicket prices the route, creates the ticket in pending state
// with that cost fixed, and issues a confirmation code to the passenger.
// The passenger's balance must already cover the fare; the authoritative
// balance check happens again inside Confirm.
func (s *TicketService) CreatePendingTicket(passengerID, startID, destID uint) (*models.Ticket, error) {
	if startID == destID {
		return nil, models.ErrSameStation
	}
	passenger, err := s.store.GetPassenger(passengerID)
	if err != nil {
		return nil, err
	}

	route, err := s.PriceRoute(startID, destID)
	if err != nil {
		return nil, err
	}
	if passenger.Balance < route.Cost {
		return nil, models.ErrInsufficientBalance
	}

	ticket := &models.Ticket{
		PassengerID:          passengerID,
		StartStationID:       startID,
		DestinationStationID: destID,
		Cost:                 route.Cost,
		Status:               models.TicketStatusPending,
	}
	if _, err := s.store.CreateTicket(ticket); err != nil {
		return nil, err
	}

	if err := s.IssueConfirmation(ticket.TicketID); err != nil {
		// Ticket stands; the passenger can request a fresh code.
		return ticket, err
	}
	return ticket, nil
}

// IssueConfirmation issues a fresh confirmation code for a pending ticket.
func (s *TicketService) IssueConfirmation(ticketID string) error {
	ticket, err := s.store.GetTicketByTicketID(ticketID)
	if err != nil {
		return err
	}
	if ticket.Status != models.TicketStatusPending {
		return models.ErrTicketNotPending
	}
	_, err = s.otp.Issue(ticket.PassengerID)
	return err
}

// Confirm activates a pending ticket: the submitted code must verify for the
// ticket's passenger, then the stored cost is debited atomically with the
// status flip. A replayed code or a concurrent second confirm finds the
// ticket no longer pending and nothing is debited again.
func (s *TicketService) Confirm(ticketID, code string) (*models.Ticket, error) {
	ticket, err := s.store.GetTicketByTicketID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketStatusPending {
		return nil, models.ErrTicketNotPending
	}
	if err := s.otp.Verify(ticket.PassengerID, code); err != nil {
		return nil, err
	}
	return s.store.ActivateTicket(ticketID)
}

// ScanIncoming handles the incoming-platform scan: an active ticket goes in
// use, an in-use ticket is a no-op.
func (s *TicketService) ScanIncoming(ticketID string, passengerID uint) (string, error) {
	ticket, err := s.store.GetTicketForPassenger(ticketID, passengerID)
	if err != nil {
		return "", err
	}

	switch ticket.Status {
	case models.TicketStatusInUse:
		return MsgAlreadyScanned, nil
	case models.TicketStatusExpired:
		return "", fmt.Errorf("%w: ticket expired", models.ErrInvalidTransition)
	case models.TicketStatusActive:
		if err := s.store.UpdateTicketStatus(ticketID, models.TicketStatusInUse); err != nil {
			return "", err
		}
		return MsgScannedIn, nil
	default:
		return "", fmt.Errorf("%w: ticket is not paid for", models.ErrInvalidTransition)
	}
}

// ScanOutgoing handles the outgoing-platform scan: an in-use ticket expires,
// an expired ticket is a no-op, a never-boarded ticket is rejected.
func (s *TicketService) ScanOutgoing(ticketID string, passengerID uint) (string, error) {
	ticket, err := s.store.GetTicketForPassenger(ticketID, passengerID)
	if err != nil {
		return "", err
	}

	switch ticket.Status {
	case models.TicketStatusExpired:
		return MsgAlreadyScanned, nil
	case models.TicketStatusActive:
		return "", fmt.Errorf("%w: go to the incoming platform first", models.ErrInvalidTransition)
	case models.TicketStatusInUse:
		if err := s.store.UpdateTicketStatus(ticketID, models.TicketStatusExpired); err != nil {
			return "", err
		}
		return MsgJourneyCompleted, nil
	default:
		return "", fmt.Errorf("%w: ticket is not paid for", models.ErrInvalidTransition)
	}
}

// PurchaseOffline issues an operator ticket directly in use, skipping the
// pending state and the OTP gate. The fare is still priced at creation and
// the purchase fails when no route exists.
func (s *TicketService) PurchaseOffline(passengerID, startID, destID uint) (*models.Ticket, error) {
	if startID == destID {
		return nil, models.ErrSameStation
	}
	if _, err := s.store.GetPassenger(passengerID); err != nil {
		return nil, err
	}

	route, err := s.PriceRoute(startID, destID)
	if err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		PassengerID:          passengerID,
		StartStationID:       startID,
		DestinationStationID: destID,
		Cost:                 route.Cost,
		Status:               models.TicketStatusInUse,
	}
	if _, err := s.store.CreateTicket(ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}
