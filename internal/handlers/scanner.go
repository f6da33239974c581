package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metropass/metropass-backend/internal/services"
)

// ScannerHandler handles the platform-side scanner endpoints and the
// operator offline purchase
type ScannerHandler struct {
	tickets *services.TicketService
}

func NewScannerHandler(tickets *services.TicketService) *ScannerHandler {
	return &ScannerHandler{tickets: tickets}
}

type scanRequest struct {
	TicketID    string `json:"ticket_id"`
	PassengerID uint   `json:"passenger_id"`
}

func parseScan(c *fiber.Ctx) (*scanRequest, error) {
	var req scanRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.TicketID == "" || req.PassengerID == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Ticket ID and passenger ID are required")
	}
	return &req, nil
}

// ScanIncoming marks an active ticket as boarded
func (h *ScannerHandler) ScanIncoming(c *fiber.Ctx) error {
	req, err := parseScan(c)
	if err != nil {
		return err
	}

	message, err := h.tickets.ScanIncoming(req.TicketID, req.PassengerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": message,
	})
}

// ScanOutgoing completes the journey for an in-use ticket
func (h *ScannerHandler) ScanOutgoing(c *fiber.Ctx) error {
	req, err := parseScan(c)
	if err != nil {
		return err
	}

	message, err := h.tickets.ScanOutgoing(req.TicketID, req.PassengerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": message,
	})
}

// PurchaseOffline issues an operator ticket straight into the in-use state
func (h *ScannerHandler) PurchaseOffline(c *fiber.Ctx) error {
	var req struct {
		PassengerID          uint `json:"passenger_id"`
		StartStationID       uint `json:"start_station_id"`
		DestinationStationID uint `json:"destination_station_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.PassengerID == 0 || req.StartStationID == 0 || req.DestinationStationID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Passenger, start and destination stations are required",
		})
	}

	ticket, err := h.tickets.PurchaseOffline(
		req.PassengerID, req.StartStationID, req.DestinationStationID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Offline ticket issued",
		"ticket":  ticket,
	})
}
