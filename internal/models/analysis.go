package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Verdict string

const (
	VerdictLow    Verdict = "Low"
	VerdictMedium Verdict = "Medium"
	VerdictHigh   Verdict = "High"
)

// VerdictFor maps a 0-100 relevance score onto the coarse verdict tiers.
// Boundaries are half-open: [70,100] High, [40,70) Medium, [0,40) Low.
func VerdictFor(relevance float64) Verdict {
	switch {
	case relevance >= 70:
		return VerdictHigh
	case relevance >= 40:
		return VerdictMedium
	default:
		return VerdictLow
	}
}

const (
	MethodSemanticEmbedding = "semantic_embedding"
	MethodFallback          = "fallback"
)

// StringList persists as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for string list: %T", value)
	}

	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	return nil
}

// SkillScores maps a skill name to a 0-100 match score. Only skills the job
// description actually requires appear as keys. Persists as a JSON object.
type SkillScores map[string]int

func (s SkillScores) Value() (driver.Value, error) {
	if s == nil {
		s = SkillScores{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode skill scores: %w", err)
	}
	return string(data), nil
}

func (s *SkillScores) Scan(value interface{}) error {
	if value == nil {
		*s = SkillScores{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for skill scores: %T", value)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to decode skill scores: %w", err)
	}
	return nil
}

// Analysis is the outcome of matching one resume against one job description.
// Relevance is SimilarityScore on a 0-100 scale, kept as a separate field for
// backward-compatible naming.
type Analysis struct {
	Relevance       float64     `json:"relevance"`
	Verdict         Verdict     `json:"verdict"`
	MissingKeywords StringList  `json:"missing_keywords"`
	TechnicalSkills SkillScores `json:"technical_skills"`
	SoftSkills      SkillScores `json:"soft_skills"`
	SimilarityScore float64     `json:"similarity_score"`
	AnalysisMethod  string      `json:"analysis_method"`
}

// FallbackAnalysis is the neutral result returned when any analysis step
// fails. Callers always get a well-formed Analysis, never an error.
func FallbackAnalysis() *Analysis {
	return &Analysis{
		Relevance:       50.0,
		Verdict:         VerdictMedium,
		MissingKeywords: StringList{},
		TechnicalSkills: SkillScores{},
		SoftSkills:      SkillScores{},
		SimilarityScore: 0.5,
		AnalysisMethod:  MethodFallback,
	}
}

// AnalysisResult is the persisted form of an Analysis. At most one row exists
// per (resume, job description) pair; repeat analyses replace it.
type AnalysisResult struct {
	ID               uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ResumeID         uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_analysis_pair" json:"resume_id"`
	JobDescriptionID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_analysis_pair" json:"job_description_id"`
	RelevanceScore   float64     `json:"relevance_score"`
	Verdict          Verdict     `gorm:"type:text" json:"verdict"`
	MissingKeywords  StringList  `gorm:"type:text" json:"missing_keywords"`
	TechnicalSkills  SkillScores `gorm:"type:text" json:"technical_skills"`
	SoftSkills       SkillScores `gorm:"type:text" json:"soft_skills"`
	SimilarityScore  float64     `json:"similarity_score"`
	AnalysisMethod   string      `gorm:"type:text" json:"analysis_method"`
	CreatedAt        time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Resume         Document `gorm:"foreignKey:ResumeID" json:"-"`
	JobDescription Document `gorm:"foreignKey:JobDescriptionID" json:"-"`
}

func (AnalysisResult) TableName() string {
	return "analysis_results"
}
