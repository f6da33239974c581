package models

import (
	"errors"
	"fmt"
)

// Request-scoped failures. All of these are value-returned and checked with
// errors.Is/errors.As; none are fatal to the process.
var (
	ErrUnknownStation      = errors.New("unknown station")
	ErrNoRouteFound        = errors.New("no route found")
	ErrSameStation         = errors.New("start and destination cannot be the same")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired OTP")
	ErrInvalidTransition   = errors.New("invalid ticket transition")
	ErrDuplicateConnection = errors.New("connection already exists for this line, start and destination")

	ErrPassengerNotFound  = errors.New("passenger not found")
	ErrLineNotFound       = errors.New("line not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrTicketNotFound     = errors.New("ticket not found")

	// ErrTicketNotPending is returned when a confirmation races another and
	// loses: the ticket is already active (or further along), so no second
	// debit is taken.
	ErrTicketNotPending = errors.New("ticket is not pending confirmation")
)

// NoRouteError reports that two stations are disconnected given the lines
// currently in service. It matches ErrNoRouteFound under errors.Is.
type NoRouteError struct {
	From uint
	To   uint
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no operational route from station %d to station %d", e.From, e.To)
}

func (e *NoRouteError) Is(target error) bool {
	return target == ErrNoRouteFound
}
