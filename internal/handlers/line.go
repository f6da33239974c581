package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metropass/metropass-backend/internal/models"
	"github.com/metropass/metropass-backend/internal/storage"
)

// LineHandler handles operator CRUD for lines, including service toggling
type LineHandler struct {
	store storage.Store
}

func NewLineHandler(store storage.Store) *LineHandler {
	return &LineHandler{store: store}
}

// CreateLine handles creating a new line. Lines start active unless the
// request says otherwise.
func (h *LineHandler) CreateLine(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		IsActive *bool  `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Line name is required",
		})
	}

	line := &models.Line{Name: req.Name, IsActive: true}
	if req.IsActive != nil {
		line.IsActive = *req.IsActive
	}

	line, err := h.store.CreateLine(line)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(line)
}

// GetLine retrieves a line by ID
func (h *LineHandler) GetLine(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Line ID is required",
		})
	}

	line, err := h.store.GetLine(uint(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(line)
}

// ListLines returns all lines
func (h *LineHandler) ListLines(c *fiber.Ctx) error {
	lines, err := h.store.GetAllLines()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"lines": lines,
		"count": len(lines),
	})
}

// SetActive toggles a line in or out of service. Pricing picks the change up
// on the next costing call.
func (h *LineHandler) SetActive(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Line ID is required",
		})
	}

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "is_active is required",
		})
	}

	if err := h.store.SetLineActive(uint(id), *req.IsActive); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Line updated",
	})
}

// DeleteLine deletes a line and its connections
func (h *LineHandler) DeleteLine(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Line ID is required",
		})
	}

	if err := h.store.DeleteLine(uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Line deleted",
	})
}
