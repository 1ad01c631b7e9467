package models

type UploadResponse struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
	TextLength   int    `json:"text_length"`
}

// AnalyzeRequest accepts either stored document ids or raw texts. When ids are
// given the result is persisted and the vectors are handed to the index.
type AnalyzeRequest struct {
	ResumeID         string `json:"resume_id" validate:"omitempty,uuid"`
	JobDescriptionID string `json:"job_description_id" validate:"omitempty,uuid"`
	ResumeText       string `json:"resume_text"`
	JobDescription   string `json:"job_description_text"`
}

type AnalyzeResponse struct {
	ResumeID         string    `json:"resume_id,omitempty"`
	JobDescriptionID string    `json:"job_description_id,omitempty"`
	Analysis         *Analysis `json:"analysis"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}

type SearchMatch struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Kind       string  `json:"kind"`
	Name       string  `json:"name,omitempty"`
}

type SearchResponse struct {
	Matches []SearchMatch `json:"matches"`
	Model   string        `json:"model"`
}

type SwitchModelRequest struct {
	Key string `json:"key" validate:"required"`
}
