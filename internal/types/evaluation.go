package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Recommendation is the human-readable hiring recommendation label
type Recommendation string

// The five recommendation labels. Anything the scoring stage emits outside
// this set is reported as RecommendationMaybe.
const (
	RecommendationStrongHire   Recommendation = "Strong Hire"
	RecommendationHire         Recommendation = "Hire"
	RecommendationMaybe        Recommendation = "Maybe"
	RecommendationNoHire       Recommendation = "No Hire"
	RecommendationStrongNoHire Recommendation = "Strong No Hire"
)

var recommendationLabels = map[string]Recommendation{
	"strong_hire":    RecommendationStrongHire,
	"hire":           RecommendationHire,
	"maybe":          RecommendationMaybe,
	"no_hire":        RecommendationNoHire,
	"strong_no_hire": RecommendationStrongNoHire,
}

// ParseRecommendation maps a scoring-stage code (case-insensitive) to its label.
func ParseRecommendation(code string) Recommendation {
	if label, ok := recommendationLabels[strings.ToLower(strings.TrimSpace(code))]; ok {
		return label
	}
	return RecommendationMaybe
}

// Recommendations returns every label in descending order of confidence.
func Recommendations() []Recommendation {
	return []Recommendation{
		RecommendationStrongHire,
		RecommendationHire,
		RecommendationMaybe,
		RecommendationNoHire,
		RecommendationStrongNoHire,
	}
}

// DefaultCriterionScore is used for any criterion the scoring stage omits.
const DefaultCriterionScore = 5.0

// EvaluationCriteria holds the five bounded criterion scores, each in [0,10]
type EvaluationCriteria struct {
	TechnicalSkills     float64 `json:"technical_skills"`
	Communication       float64 `json:"communication"`
	ProblemSolving      float64 `json:"problem_solving"`
	CulturalFit         float64 `json:"cultural_fit"`
	ExperienceRelevance float64 `json:"experience_relevance"`
}

// TotalScore is the arithmetic mean of the five criteria.
func (c EvaluationCriteria) TotalScore() float64 {
	return (c.TechnicalSkills + c.Communication + c.ProblemSolving + c.CulturalFit + c.ExperienceRelevance) / 5
}

// ---------------------------------------------------------------------
// Stage records
// ---------------------------------------------------------------------

// SkillAssessment is a skill found in a resume
type SkillAssessment struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
	Evidence    string `json:"evidence,omitempty"`
}

// Education is an education entry found in a resume
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution,omitempty"`
	Year        Score  `json:"year,omitempty"`
	Relevance   string `json:"relevance,omitempty"`
}

// WorkExperience is a work history entry found in a resume
type WorkExperience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	Relevance    string   `json:"relevance,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// ResumeAnalysis is the record produced by the resume analysis stage
type ResumeAnalysis struct {
	ExperienceYears   Score             `json:"experience_years"`
	Skills            []SkillAssessment `json:"skills"`
	Education         []Education       `json:"education"`
	WorkExperience    []WorkExperience  `json:"work_experience"`
	Certifications    []string          `json:"certifications"`
	Achievements      []string          `json:"achievements"`
	RedFlags          []string          `json:"red_flags"`
	OverallAssessment string            `json:"overall_assessment"`
	Strengths         []string          `json:"strengths"`
	Weaknesses        []string          `json:"weaknesses"`
}

// InterviewEvaluation is the record produced by the interview evaluation stage
type InterviewEvaluation struct {
	CommunicationScore      Score    `json:"communication_score"`
	ProblemSolvingScore     Score    `json:"problem_solving_score"`
	TechnicalKnowledgeScore Score    `json:"technical_knowledge_score"`
	CulturalFitScore        Score    `json:"cultural_fit_score"`
	LeadershipScore         Score    `json:"leadership_score"`
	QuestionsAnsweredWell   []string `json:"questions_answered_well"`
	QuestionsStruggledWith  []string `json:"questions_struggled_with"`
	KeyInsights             []string `json:"key_insights"`
	RedFlags                []string `json:"red_flags"`
	StrengthsDemonstrated   []string `json:"strengths_demonstrated"`
	AreasForImprovement     []string `json:"areas_for_improvement"`
	OverallAssessment       string   `json:"overall_assessment"`
	RecommendationNotes     string   `json:"recommendation_notes"`
}

// DetailedScores is the per-criterion sub-record of the scoring stage
type DetailedScores struct {
	TechnicalSkills     Score `json:"technical_skills"`
	Communication       Score `json:"communication"`
	ProblemSolving      Score `json:"problem_solving"`
	CulturalFit         Score `json:"cultural_fit"`
	ExperienceRelevance Score `json:"experience_relevance"`
}

// ScoringRecord is the record produced by the final scoring stage
type ScoringRecord struct {
	OverallScore       Score          `json:"overall_score"`
	DetailedScores     DetailedScores `json:"detailed_scores"`
	Recommendation     string         `json:"recommendation"`
	Confidence         Score          `json:"confidence"`
	KeyStrengths       []string       `json:"key_strengths"`
	MainConcerns       []string       `json:"main_concerns"`
	DetailedReasoning  string         `json:"detailed_reasoning"`
	NextSteps          []string       `json:"next_steps"`
	RiskFactors        []string       `json:"risk_factors"`
	OpportunityFactors []string       `json:"opportunity_factors"`
}

// StageOutput keeps the raw collaborator text next to the record extracted from it
type StageOutput[R any] struct {
	Raw    string `json:"raw"`
	Record R      `json:"record"`
}

// EvaluationResult is the immutable outcome of one evaluation pipeline run
type EvaluationResult struct {
	ID               uuid.UUID                        `json:"id"`
	CandidateID      uuid.UUID                        `json:"candidate_id"`
	Position         string                           `json:"position"`
	OverallScore     float64                          `json:"overall_score"`
	Criteria         EvaluationCriteria               `json:"criteria"`
	Recommendation   Recommendation                   `json:"recommendation"`
	Strengths        []string                         `json:"strengths"`
	Weaknesses       []string                         `json:"weaknesses"`
	DetailedFeedback string                           `json:"detailed_feedback"`
	ResumeAnalysis   StageOutput[ResumeAnalysis]      `json:"resume_analysis"`
	Interview        StageOutput[InterviewEvaluation] `json:"interview_evaluation"`
	Scoring          StageOutput[ScoringRecord]       `json:"scoring"`
	EvaluatedAt      time.Time                        `json:"evaluated_at"`
	EvaluatedBy      string                           `json:"evaluated_by"`
}

// EvaluationSummary is the compact view of an EvaluationResult used in listings
type EvaluationSummary struct {
	ID             uuid.UUID          `json:"evaluation_id"`
	CandidateID    uuid.UUID          `json:"candidate_id"`
	OverallScore   float64            `json:"overall_score"`
	Recommendation Recommendation     `json:"recommendation"`
	CriteriaScores EvaluationCriteria `json:"criteria_scores"`
	TotalScore     float64            `json:"total_score"`
	Strengths      []string           `json:"strengths"`
	Weaknesses     []string           `json:"weaknesses"`
	EvaluatedAt    time.Time          `json:"evaluated_at"`
	EvaluatedBy    string             `json:"evaluated_by"`
}

// Summary builds the compact view of the result.
func (r *EvaluationResult) Summary() EvaluationSummary {
	return EvaluationSummary{
		ID:             r.ID,
		CandidateID:    r.CandidateID,
		OverallScore:   r.OverallScore,
		Recommendation: r.Recommendation,
		CriteriaScores: r.Criteria,
		TotalScore:     r.Criteria.TotalScore(),
		Strengths:      r.Strengths,
		Weaknesses:     r.Weaknesses,
		EvaluatedAt:    r.EvaluatedAt,
		EvaluatedBy:    r.EvaluatedBy,
	}
}
