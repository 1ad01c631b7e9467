package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumatch/resume-matcher/internal/models"
)

type DocumentRepository interface {
	Create(document *models.Document) error
	FindByID(id uuid.UUID) (*models.Document, error)
	FindByKind(kind models.DocumentKind) ([]models.Document, error)
	FindWithoutEmbeddings(limit int) ([]models.Document, error)
	UpdateEmbeddingStatus(id uuid.UUID, modelName string) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create implements DocumentRepository.
func (d *documentRepository) Create(document *models.Document) error {
	if err := d.db.Create(&document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// FindByID implements DocumentRepository.
func (d *documentRepository) FindByID(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := d.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("document not found: %w", err)
		}

		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// FindByKind implements DocumentRepository.
func (d *documentRepository) FindByKind(kind models.DocumentKind) ([]models.Document, error) {
	var docs []models.Document
	if err := d.db.Where("kind = ?", kind).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}

	return docs, nil
}

// FindWithoutEmbeddings returns documents the backfill worker still has to
// push into the vector index.
func (d *documentRepository) FindWithoutEmbeddings(limit int) ([]models.Document, error) {
	var docs []models.Document
	err := d.db.
		Where("has_embedding = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&docs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find documents without embeddings: %w", err)
	}

	return docs, nil
}

// UpdateEmbeddingStatus implements DocumentRepository.
func (d *documentRepository) UpdateEmbeddingStatus(id uuid.UUID, modelName string) error {
	now := time.Now()
	result := d.db.Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"has_embedding":        true,
			"embedding_model":      modelName,
			"embedding_created_at": now,
			"updated_at":           now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update embedding status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("document not found")
	}

	return nil
}
