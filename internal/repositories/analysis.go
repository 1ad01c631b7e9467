package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumatch/resume-matcher/internal/models"
)

type AnalysisRepository interface {
	Upsert(result *models.AnalysisResult) error
	FindByPair(resumeID, jdID uuid.UUID) (*models.AnalysisResult, error)
	FindByResume(resumeID uuid.UUID) ([]models.AnalysisResult, error)
	FindByJobDescription(jdID uuid.UUID) ([]models.AnalysisResult, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Upsert stores the analysis for a (resume, job description) pair, replacing
// any previous result for the same pair.
func (r *analysisRepository) Upsert(result *models.AnalysisResult) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "resume_id"}, {Name: "job_description_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"relevance_score",
			"verdict",
			"missing_keywords",
			"technical_skills",
			"soft_skills",
			"similarity_score",
			"analysis_method",
			"updated_at",
		}),
	}).Create(result).Error

	if err != nil {
		return fmt.Errorf("failed to upsert analysis result: %w", err)
	}

	return nil
}

// FindByPair implements AnalysisRepository.
func (r *analysisRepository) FindByPair(resumeID, jdID uuid.UUID) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	err := r.db.
		Where("resume_id = ? AND job_description_id = ?", resumeID, jdID).
		First(&result).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("analysis result not found")
		}
		return nil, fmt.Errorf("failed to find analysis result: %w", err)
	}

	return &result, nil
}

// FindByResume implements AnalysisRepository.
func (r *analysisRepository) FindByResume(resumeID uuid.UUID) ([]models.AnalysisResult, error) {
	var results []models.AnalysisResult
	err := r.db.
		Where("resume_id = ?", resumeID).
		Order("relevance_score DESC").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find analysis results: %w", err)
	}

	return results, nil
}

// FindByJobDescription implements AnalysisRepository.
func (r *analysisRepository) FindByJobDescription(jdID uuid.UUID) ([]models.AnalysisResult, error) {
	var results []models.AnalysisResult
	err := r.db.
		Where("job_description_id = ?", jdID).
		Order("relevance_score DESC").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find analysis results: %w", err)
	}

	return results, nil
}
