package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/services"
)

const defaultTopK = 5

type SearchHandler struct {
	matcher  services.MatcherService
	embedder services.EmbeddingService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewSearchHandler(matcher services.MatcherService, embedder services.EmbeddingService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		matcher:  matcher,
		embedder: embedder,
		validate: validator.New(),
		logger:   logger,
	}
}

// HandleSearchResumes handles POST /search/resumes.
func (h *SearchHandler) HandleSearchResumes(c *fiber.Ctx) error {
	return h.search(c, models.KindResume)
}

// HandleSearchJobDescriptions handles POST /search/job-descriptions.
func (h *SearchHandler) HandleSearchJobDescriptions(c *fiber.Ctx) error {
	return h.search(c, models.KindJobDescription)
}

func (h *SearchHandler) search(c *fiber.Ctx, kind models.DocumentKind) error {
	var req models.SearchRequest

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

	topK := req.TopK
	if topK == 0 {
		topK = defaultTopK
	}

	matches, err := h.matcher.SearchSimilar(c.Context(), kind, req.Query, topK)
	if err != nil {
		// The index is a best-effort collaborator: degrade to empty results.
		h.logger.Warn("vector search failed", zap.String("kind", string(kind)), zap.Error(err))
		matches = []services.IndexMatch{}
	}

	return c.JSON(h.toResponse(kind, matches))
}

// HandleBestMatches handles GET /resumes/:id/matches — the closest job
// descriptions for a stored resume.
func (h *SearchHandler) HandleBestMatches(c *fiber.Ctx) error {
	resumeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume id format",
		})
	}

	topK := c.QueryInt("top_k", defaultTopK)

	matches, err := h.matcher.BestMatches(c.Context(), resumeID, topK)
	if err != nil {
		h.logger.Warn("best matches lookup failed", zap.String("resume_id", resumeID.String()), zap.Error(err))
		matches = []services.IndexMatch{}
	}

	return c.JSON(h.toResponse(models.KindJobDescription, matches))
}

func (h *SearchHandler) toResponse(kind models.DocumentKind, matches []services.IndexMatch) models.SearchResponse {
	resp := models.SearchResponse{
		Matches: make([]models.SearchMatch, 0, len(matches)),
		Model:   h.embedder.ActiveModel().Key,
	}

	for _, match := range matches {
		entry := models.SearchMatch{
			DocumentID: match.DocID,
			Score:      match.Score,
			Kind:       string(kind),
		}
		switch kind {
		case models.KindResume:
			if name, ok := match.Metadata["candidate_name"].(string); ok {
				entry.Name = name
			}
		case models.KindJobDescription:
			if role, ok := match.Metadata["role"].(string); ok {
				entry.Name = role
			}
		}
		resp.Matches = append(resp.Matches, entry)
	}

	return resp
}
