package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metropass/metropass-backend/internal/models"
	"github.com/metropass/metropass-backend/internal/storage"
)

// StationHandler handles operator CRUD for stations
type StationHandler struct {
	store storage.Store
}

func NewStationHandler(store storage.Store) *StationHandler {
	return &StationHandler{store: store}
}

// CreateStation handles creating a new station
func (h *StationHandler) CreateStation(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Station name is required",
		})
	}

	station, err := h.store.CreateStation(&models.Station{Name: req.Name})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(station)
}

// GetStation retrieves a station by ID
func (h *StationHandler) GetStation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Station ID is required",
		})
	}

	station, err := h.store.GetStation(uint(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(station)
}

// ListStations returns all stations
func (h *StationHandler) ListStations(c *fiber.Ctx) error {
	stations, err := h.store.GetAllStations()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"stations": stations,
		"count":    len(stations),
	})
}

// DeleteStation deletes a station and everything that references it
func (h *StationHandler) DeleteStation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Station ID is required",
		})
	}

	if err := h.store.DeleteStation(uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Station deleted",
	})
}
