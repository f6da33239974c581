package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metropass/metropass-backend/internal/models"
	"github.com/metropass/metropass-backend/internal/storage"
)

// ConnectionHandler handles operator CRUD for connections
type ConnectionHandler struct {
	store storage.Store
}

func NewConnectionHandler(store storage.Store) *ConnectionHandler {
	return &ConnectionHandler{store: store}
}

// CreateConnection handles creating a new connection between two stations
func (h *ConnectionHandler) CreateConnection(c *fiber.Ctx) error {
	var req struct {
		LineID               uint    `json:"line_id"`
		StartStationID       uint    `json:"start_station_id"`
		DestinationStationID uint    `json:"destination_station_id"`
		Distance             float64 `json:"distance"`
		TravelTime           uint    `json:"travel_time"`
		Cost                 float64 `json:"cost"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.LineID == 0 || req.StartStationID == 0 || req.DestinationStationID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Line ID, start station and destination station are required",
		})
	}
	if req.Distance < 0 || req.Cost < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Distance and cost must be non-negative",
		})
	}

	conn, err := h.store.CreateConnection(&models.Connection{
		LineID:               req.LineID,
		StartStationID:       req.StartStationID,
		DestinationStationID: req.DestinationStationID,
		Distance:             req.Distance,
		TravelTime:           req.TravelTime,
		Cost:                 req.Cost,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// GetConnection retrieves a connection by ID
func (h *ConnectionHandler) GetConnection(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Connection ID is required",
		})
	}

	conn, err := h.store.GetConnection(uint(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(conn)
}

// ListConnections returns all connections
func (h *ConnectionHandler) ListConnections(c *fiber.Ctx) error {
	conns, err := h.store.GetAllConnections()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"connections": conns,
		"count":       len(conns),
	})
}

// DeleteConnection deletes a connection
func (h *ConnectionHandler) DeleteConnection(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Connection ID is required",
		})
	}

	if err := h.store.DeleteConnection(uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Connection deleted",
	})
}
