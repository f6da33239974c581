package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metropass/metropass-backend/internal/services"
)

// TicketHandler handles route pricing and the online purchase flow
type TicketHandler struct {
	tickets *services.TicketService
}

func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// PriceRoute prices a journey without creating anything
func (h *TicketHandler) PriceRoute(c *fiber.Ctx) error {
	var req struct {
		StartStationID       uint `json:"start_station_id"`
		DestinationStationID uint `json:"destination_station_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.StartStationID == 0 || req.DestinationStationID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Start and destination stations are required",
		})
	}

	route, err := h.tickets.PriceRoute(req.StartStationID, req.DestinationStationID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(route)
}

// CreateTicket purchases a new pending ticket and sends the passenger a
// confirmation code
func (h *TicketHandler) CreateTicket(c *fiber.Ctx) error {
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

	ticket, err := h.tickets.CreatePendingTicket(
		req.PassengerID, req.StartStationID, req.DestinationStationID)
	if err != nil {
		if ticket != nil {
			// Ticket created but the code didn't go out; the passenger can
			// request a reissue.
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"ticket":  ticket,
				"warning": "Confirmation code could not be delivered, request a new one",
			})
		}
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Ticket created, confirmation code sent",
		"ticket":  ticket,
	})
}

// ReissueCode sends a fresh confirmation code for a pending ticket
func (h *TicketHandler) ReissueCode(c *fiber.Ctx) error {
	ticketID := c.Params("ticketID")
	if ticketID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Ticket ID is required",
		})
	}

	if err := h.tickets.IssueConfirmation(ticketID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Confirmation code sent",
	})
}

// ConfirmTicket verifies the OTP, debits the fare and activates the ticket
func (h *TicketHandler) ConfirmTicket(c *fiber.Ctx) error {
	ticketID := c.Params("ticketID")
	if ticketID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Ticket ID is required",
		})
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Confirmation code is required",
		})
	}

	ticket, err := h.tickets.Confirm(ticketID, req.Code)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Ticket activated",
		"ticket":  ticket,
	})
}
