package handlers

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

type UploadHandler struct {
	docRepo     repositories.DocumentRepository
	storage     services.StorageService
	extractor   services.TextExtractor
	worker      services.Worker
	maxFileSize int64
	logger      *zap.Logger
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storage services.StorageService,
	extractor services.TextExtractor,
	worker services.Worker,
	maxFileSize int64,
	logger *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		docRepo:     docRepo,
		storage:     storage,
		extractor:   extractor,
		worker:      worker,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// HandleUpload handles POST /upload. The multipart form may carry a "resume"
// file and/or a "job_description" file, each with its own metadata fields. A
// re-upload always creates a new document; stored embeddings never go stale
// against edited text.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	var responses []models.UploadResponse

	if files, exists := form.File["resume"]; exists && len(files) > 0 {
		doc, err := h.buildDocument(files[0], models.KindResume)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to accept resume: %v", err),
			})
		}
		doc.CandidateName = formValue(form, "candidate_name")
		doc.Email = formValue(form, "email")

		resp, err := h.persistDocument(doc)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save resume record: %v", err),
			})
		}
		responses = append(responses, *resp)
	}

	if files, exists := form.File["job_description"]; exists && len(files) > 0 {
		doc, err := h.buildDocument(files[0], models.KindJobDescription)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to accept job description: %v", err),
			})
		}
		doc.Company = formValue(form, "company")
		doc.Role = formValue(form, "role")
		doc.Location = formValue(form, "location")

		resp, err := h.persistDocument(doc)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save job description record: %v", err),
			})
		}
		responses = append(responses, *resp)
	}

	if len(responses) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No valid files uploaded. Please upload 'resume' and/or 'job_description' as PDF or TXT files.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Files uploaded successfully",
		"documents": responses,
	})
}

// buildDocument stores the file on disk and extracts its text. Extraction
// failure is not fatal: the document is kept with empty content, which the
// analysis pipeline treats as "no signal".
func (h *UploadHandler) buildDocument(file *multipart.FileHeader, kind models.DocumentKind) (*models.Document, error) {
	if file.Size > h.maxFileSize {
		return nil, fmt.Errorf("file too large, max size: %d bytes", h.maxFileSize)
	}

	filename, filePath, err := h.storage.SaveFile(file, string(kind))
	if err != nil {
		return nil, err
	}

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")

	content, err := h.extractor.ExtractText(filePath, fileType)
	if err != nil {
		h.logger.Warn("text extraction failed, storing document without content",
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
		content = ""
	}

	return &models.Document{
		ID:               uuid.New(),
		Kind:             kind,
		Filename:         filename,
		OriginalFileName: file.Filename,
		FileType:         fileType,
		FilePath:         filePath,
		Content:          content,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}, nil
}

func (h *UploadHandler) persistDocument(doc *models.Document) (*models.UploadResponse, error) {
	if err := h.docRepo.Create(doc); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storage.DeleteFile(doc.Filename)
		return nil, err
	}

	// Fire-and-forget: the backfill worker pushes the vector into the index.
	h.worker.EnqueueDocument(doc.ID)

	return &models.UploadResponse{
		ID:           doc.ID.String(),
		Kind:         string(doc.Kind),
		Filename:     doc.Filename,
		OriginalName: doc.OriginalFileName,
		FileType:     doc.FileType,
		TextLength:   len(doc.Content),
	}, nil
}

func formValue(form *multipart.Form, key string) string {
	if values, ok := form.Value[key]; ok && len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}
