package services

import (
	"strings"

	"resumatch/resume-matcher/internal/models"
)

// Skill catalogs checked against every analysis. Multi-word entries match as
// case-insensitive substrings.
var technicalSkillCatalog = []string{
	"python", "java", "javascript", "react", "angular", "vue",
	"sql", "mongodb", "postgresql", "mysql", "docker", "kubernetes",
	"aws", "azure", "gcp", "machine learning", "ai", "data science",
	"tensorflow", "pytorch", "scikit-learn", "pandas", "numpy",
}

var softSkillCatalog = []string{
	"communication", "leadership", "teamwork", "problem solving",
	"analytical", "creative", "adaptable", "organized", "detail oriented",
}

const (
	technicalMatchScore   = 85
	technicalMissingScore = 20
	softMatchScore        = 80
	softMissingScore      = 30
)

// SkillAnalyzer scores catalog skills by presence. Only skills the job
// description mentions are scored at all; presence in the resume decides
// between the fixed match and missing scores. Deliberately deterministic —
// this is a binary-presence heuristic on a 0-100 display scale, not a graded
// proficiency estimate.
type SkillAnalyzer struct{}

func NewSkillAnalyzer() *SkillAnalyzer {
	return &SkillAnalyzer{}
}

// ScoreTechnical scores the technical skill catalog.
func (a *SkillAnalyzer) ScoreTechnical(resumeText, jdText string) models.SkillScores {
	return a.scoreSkills(resumeText, jdText, technicalSkillCatalog, technicalMatchScore, technicalMissingScore)
}

// ScoreSoft scores the soft skill catalog.
func (a *SkillAnalyzer) ScoreSoft(resumeText, jdText string) models.SkillScores {
	return a.scoreSkills(resumeText, jdText, softSkillCatalog, softMatchScore, softMissingScore)
}

func (a *SkillAnalyzer) scoreSkills(resumeText, jdText string, catalog []string, matchScore, missingScore int) models.SkillScores {
	scores := models.SkillScores{}
	resumeLower := strings.ToLower(resumeText)
	jdLower := strings.ToLower(jdText)

	for _, skill := range catalog {
		if !strings.Contains(jdLower, skill) {
			continue
		}
		if strings.Contains(resumeLower, skill) {
			scores[skill] = matchScore
		} else {
			scores[skill] = missingScore
		}
	}

	return scores
}
