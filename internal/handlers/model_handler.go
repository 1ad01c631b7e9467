package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"resumatch/resume-matcher/internal/config"
	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/services"
)

type ModelHandler struct {
	embedder services.EmbeddingService
	validate *validator.Validate
}

func NewModelHandler(embedder services.EmbeddingService) *ModelHandler {
	return &ModelHandler{
		embedder: embedder,
		validate: validator.New(),
	}
}

// HandleListModels handles GET /models.
func (h *ModelHandler) HandleListModels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"active": h.embedder.ActiveModel(),
		"models": config.AvailableModels(),
	})
}

// HandleSwitchModel handles PUT /models/active. An unknown key fails loudly
// with the invalid key and the valid alternatives; already-stored embeddings
// are not re-embedded.
func (h *ModelHandler) HandleSwitchModel(c *fiber.Ctx) error {
	var req models.SwitchModelRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.embedder.SwitchModel(req.Key); err != nil {
		var unknown *config.UnknownModelError
		if errors.As(err, &unknown) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":     unknown.Error(),
				"key":       unknown.Key,
				"available": unknown.Available,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Embedding model switched",
		"active":  h.embedder.ActiveModel(),
	})
}
