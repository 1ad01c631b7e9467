package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

type AnalyzeHandler struct {
	matcher      services.MatcherService
	docRepo      repositories.DocumentRepository
	analysisRepo repositories.AnalysisRepository
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewAnalyzeHandler(
	matcher services.MatcherService,
	docRepo repositories.DocumentRepository,
	analysisRepo repositories.AnalysisRepository,
	logger *zap.Logger,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		matcher:      matcher,
		docRepo:      docRepo,
		analysisRepo: analysisRepo,
		validate:     validator.New(),
		logger:       logger,
	}
}

// HandleAnalyze handles POST /analyze. The request either names two stored
// documents (analysis is persisted and the vectors cached in the index) or
// carries two raw texts (pure pairwise analysis, no side effects).
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest

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

	byID := req.ResumeID != "" || req.JobDescriptionID != ""
	if byID {
		if req.ResumeID == "" || req.JobDescriptionID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "resume_id and job_description_id must be provided together",
			})
		}
		return h.analyzeStored(c, req)
	}

	if req.ResumeText == "" || req.JobDescription == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "provide either resume_id/job_description_id or resume_text/job_description_text",
		})
	}

	analysis := h.matcher.Analyze(c.Context(), services.NewPairwiseInput(req.ResumeText, req.JobDescription))

	return c.JSON(models.AnalyzeResponse{Analysis: analysis})
}

func (h *AnalyzeHandler) analyzeStored(c *fiber.Ctx, req models.AnalyzeRequest) error {
	resumeID, err := uuid.Parse(req.ResumeID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume_id format",
		})
	}

	jdID, err := uuid.Parse(req.JobDescriptionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job_description_id format",
		})
	}

	resume, err := h.docRepo.FindByID(resumeID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resume not found",
		})
	}
	if resume.Kind != models.KindResume {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume_id does not reference a resume",
		})
	}

	jd, err := h.docRepo.FindByID(jdID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job description not found",
		})
	}
	if jd.Kind != models.KindJobDescription {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_description_id does not reference a job description",
		})
	}

	analysis := h.matcher.Analyze(
		c.Context(),
		services.NewPersistedInput(resume.Content, jd.Content, resumeID, jdID),
	)

	result := &models.AnalysisResult{
		ID:               uuid.New(),
		ResumeID:         resumeID,
		JobDescriptionID: jdID,
		RelevanceScore:   analysis.Relevance,
		Verdict:          analysis.Verdict,
		MissingKeywords:  analysis.MissingKeywords,
		TechnicalSkills:  analysis.TechnicalSkills,
		SoftSkills:       analysis.SoftSkills,
		SimilarityScore:  analysis.SimilarityScore,
		AnalysisMethod:   analysis.AnalysisMethod,
	}

	// Result storage is a collaborator concern; a failed write degrades to an
	// unsaved analysis, not an error response.
	if err := h.analysisRepo.Upsert(result); err != nil {
		h.logger.Warn("failed to persist analysis result",
			zap.String("resume_id", resumeID.String()),
			zap.String("job_description_id", jdID.String()),
			zap.Error(err),
		)
	}

	return c.JSON(models.AnalyzeResponse{
		ResumeID:         resumeID.String(),
		JobDescriptionID: jdID.String(),
		Analysis:         analysis,
	})
}
