package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumatch/resume-matcher/internal/repositories"
)

type ResultHandler struct {
	analysisRepo repositories.AnalysisRepository
}

func NewResultHandler(analysisRepo repositories.AnalysisRepository) *ResultHandler {
	return &ResultHandler{
		analysisRepo: analysisRepo,
	}
}

// HandleGetResult handles GET /results/:resume_id/:job_description_id.
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	resumeID, err := uuid.Parse(c.Params("resume_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume_id format",
		})
	}

	jdID, err := uuid.Parse(c.Params("job_description_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job_description_id format",
		})
	}

	result, err := h.analysisRepo.FindByPair(resumeID, jdID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Analysis result not found",
		})
	}

	return c.JSON(result)
}

// HandleListByResume handles GET /resumes/:id/results, ordered by relevance.
func (h *ResultHandler) HandleListByResume(c *fiber.Ctx) error {
	resumeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume id format",
		})
	}

	results, err := h.analysisRepo.FindByResume(resumeID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analysis results",
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
	})
}
