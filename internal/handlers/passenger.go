package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metropass/metropass-backend/internal/models"
	"github.com/metropass/metropass-backend/internal/storage"
)

// PassengerHandler handles passenger accounts and the balance ledger
type PassengerHandler struct {
	store storage.Store
}

func NewPassengerHandler(store storage.Store) *PassengerHandler {
	return &PassengerHandler{store: store}
}

// CreatePassenger registers a new passenger with a zero balance
func (h *PassengerHandler) CreatePassenger(c *fiber.Ctx) error {
	var reg models.PassengerRegistration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if reg.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Passenger name is required",
		})
	}

	passenger, err := h.store.CreatePassenger(&reg)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(passenger)
}

// GetPassenger retrieves a passenger by ID
func (h *PassengerHandler) GetPassenger(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Passenger ID is required",
		})
	}

	passenger, err := h.store.GetPassenger(uint(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(passenger)
}

// AddBalance tops up the passenger's balance
func (h *PassengerHandler) AddBalance(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Passenger ID is required",
		})
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Amount must be positive",
		})
	}

	passenger, err := h.store.AddBalance(uint(id), req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Balance updated",
		"balance": passenger.Balance,
	})
}

// GetTickets returns all tickets for the passenger (the dashboard view)
func (h *PassengerHandler) GetTickets(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Passenger ID is required",
		})
	}

	if _, err := h.store.GetPassenger(uint(id)); err != nil {
		return fail(c, err)
	}

	tickets, err := h.store.GetTicketsByPassenger(uint(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"tickets": tickets,
		"count":   len(tickets),
	})
}
