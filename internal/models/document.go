package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentKind string

const (
	KindResume         DocumentKind = "resume"
	KindJobDescription DocumentKind = "job_description"
)

// Document is an uploaded resume or job description. Content is immutable once
// embedded; a re-upload creates a new Document so stored embeddings never go
// stale against edited text.
type Document struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Kind             DocumentKind `gorm:"type:text;not null;index" json:"kind"`
	Filename         string       `gorm:"type:text" json:"filename"`
	OriginalFileName string       `gorm:"type:text" json:"original_filename"`
	FileType         string       `gorm:"type:text" json:"file_type"`
	FilePath         string       `gorm:"type:text" json:"file_path"`
	Content          string       `gorm:"type:text" json:"content"`

	// Resume fields
	CandidateName string `gorm:"type:text" json:"candidate_name,omitempty"`
	Email         string `gorm:"type:text" json:"email,omitempty"`

	// Job description fields
	Company  string `gorm:"type:text" json:"company,omitempty"`
	Role     string `gorm:"type:text" json:"role,omitempty"`
	Location string `gorm:"type:text" json:"location,omitempty"`

	// Embedding status. EmbeddingModel records which catalog entry produced the
	// stored vector; a model switch does not retroactively re-embed.
	HasEmbedding       bool       `gorm:"default:false" json:"has_embedding"`
	EmbeddingModel     string     `gorm:"type:text" json:"embedding_model,omitempty"`
	EmbeddingCreatedAt *time.Time `gorm:"type:timestamp" json:"embedding_created_at,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
