package types

import (
	"time"

	"github.com/google/uuid"
)

// DefaultExperienceLevel is assigned to users who do not state one
const DefaultExperienceLevel = "junior"

// User is a career-coaching user
type User struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Profession        string             `json:"profession"`
	ExperienceLevel   string             `json:"experience_level"`
	PasswordHash      string             `json:"password_hash,omitempty"`
	CVAnalysisID      *uuid.UUID         `json:"cv_analysis_id,omitempty"`
	CurrentSessionID  *uuid.UUID         `json:"current_session_id,omitempty"`
	CompletedSessions []uuid.UUID        `json:"completed_sessions"`
	TotalInterviews   int                `json:"total_interviews"`
	ScoredRounds      int                `json:"scored_rounds"`
	AverageScore      float64            `json:"average_score"`
	SkillImprovement  map[string]float64 `json:"skill_improvement"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// PublicUser is a user without credential material
type PublicUser struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Profession        string             `json:"profession"`
	ExperienceLevel   string             `json:"experience_level"`
	PasswordSet       bool               `json:"password_set"`
	CVAnalysisID      *uuid.UUID         `json:"cv_analysis_id,omitempty"`
	CurrentSessionID  *uuid.UUID         `json:"current_session_id,omitempty"`
	CompletedSessions []uuid.UUID        `json:"completed_sessions"`
	TotalInterviews   int                `json:"total_interviews"`
	AverageScore      float64            `json:"average_score"`
	SkillImprovement  map[string]float64 `json:"skill_improvement"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Public strips the password hash.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Profession:        u.Profession,
		ExperienceLevel:   u.ExperienceLevel,
		PasswordSet:       u.PasswordHash != "",
		CVAnalysisID:      u.CVAnalysisID,
		CurrentSessionID:  u.CurrentSessionID,
		CompletedSessions: u.CompletedSessions,
		TotalInterviews:   u.TotalInterviews,
		AverageScore:      u.AverageScore,
		SkillImprovement:  u.SkillImprovement,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// RecordRoundScore folds a completed round score into the running average.
// The first scored round sets the average; each later one halves the distance:
// avg = (prev + score) / 2. This weights recent rounds more heavily than a
// true mean would.
func (u *User) RecordRoundScore(score float64) {
	if u.ScoredRounds == 0 {
		u.AverageScore = score
	} else {
		u.AverageScore = (u.AverageScore + score) / 2
	}
	u.ScoredRounds++
}

// ---------------------------------------------------------------------
// CV gap analysis
// ---------------------------------------------------------------------

// SkillGap is a technical skill the CV is missing or weak on
type SkillGap struct {
	Skill         string `json:"skill"`
	Importance    string `json:"importance,omitempty"`
	CurrentLevel  string `json:"current_level,omitempty"`
	RequiredLevel string `json:"required_level,omitempty"`
}

// CertificationGap is a credential the CV is missing
type CertificationGap struct {
	Certification   string `json:"certification"`
	Importance      string `json:"importance,omitempty"`
	Provider        string `json:"provider,omitempty"`
	TypicalDuration string `json:"typical_duration,omitempty"`
}

// ExperienceGap is a kind of project, role or industry the CV lacks
type ExperienceGap struct {
	GapType     string `json:"gap_type"`
	Description string `json:"description,omitempty"`
	Importance  string `json:"importance,omitempty"`
}

// SoftSkillGap is a soft skill needing development
type SoftSkillGap struct {
	Skill                  string `json:"skill"`
	Importance             string `json:"importance,omitempty"`
	DevelopmentSuggestions string `json:"development_suggestions,omitempty"`
}

// EducationalGap is missing formal or informal education
type EducationalGap struct {
	Area       string `json:"area"`
	Type       string `json:"type,omitempty"`
	Importance string `json:"importance,omitempty"`
}

// PriorityImprovement is a ranked improvement area
type PriorityImprovement struct {
	Area          string `json:"area"`
	Priority      Score  `json:"priority"`
	Rationale     string `json:"rationale,omitempty"`
	EstimatedTime string `json:"estimated_time,omitempty"`
}

// GapAnalysis is the record produced by the CV gap analysis stage
type GapAnalysis struct {
	CurrentLevel           string                `json:"current_level"`
	OverallReadinessScore  Score                 `json:"overall_readiness_score"`
	TechnicalSkillsGaps    []SkillGap            `json:"technical_skills_gaps"`
	MissingCertifications  []CertificationGap    `json:"missing_certifications"`
	ExperienceGaps         []ExperienceGap       `json:"experience_gaps"`
	SoftSkillsGaps         []SoftSkillGap        `json:"soft_skills_gaps"`
	EducationalGaps        []EducationalGap      `json:"educational_gaps"`
	Strengths              []string              `json:"strengths"`
	PriorityImprovements   []PriorityImprovement `json:"priority_improvements"`
	CareerStageAnalysis    string                `json:"career_stage_analysis"`
	RecommendationsSummary string                `json:"recommendations_summary"`
}

// LearningResource is a certification, course, project, book or community suggestion
type LearningResource struct {
	Name             string   `json:"name,omitempty"`
	Title            string   `json:"title,omitempty"`
	Provider         string   `json:"provider,omitempty"`
	Platform         string   `json:"platform,omitempty"`
	Author           string   `json:"author,omitempty"`
	Instructor       string   `json:"instructor,omitempty"`
	Focus            string   `json:"focus,omitempty"`
	Type             string   `json:"type,omitempty"`
	Cost             string   `json:"cost,omitempty"`
	Duration         string   `json:"duration,omitempty"`
	EstimatedTime    string   `json:"estimated_time,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	Priority         string   `json:"priority,omitempty"`
	Description      string   `json:"description,omitempty"`
	Link             string   `json:"link,omitempty"`
	Technologies     []string `json:"technologies,omitempty"`
	AddressesGaps    []string `json:"addresses_gaps,omitempty"`
	Prerequisites    []string `json:"prerequisites,omitempty"`
	LearningOutcomes []string `json:"learning_outcomes,omitempty"`
}

// LearningPath is one horizon of a learning plan
type LearningPath struct {
	Focus            string   `json:"focus"`
	Activities       []string `json:"activities,omitempty"`
	ExpectedOutcomes []string `json:"expected_outcomes,omitempty"`
	EstimatedCost    string   `json:"estimated_cost,omitempty"`
}

// LearningRecommendations is the record produced by the learning recommendation stage
type LearningRecommendations struct {
	Certifications  []LearningResource      `json:"certifications"`
	Courses         []LearningResource      `json:"courses"`
	Projects        []LearningResource      `json:"projects"`
	Books           []LearningResource      `json:"books"`
	Communities     []LearningResource      `json:"communities"`
	LearningPaths   map[string]LearningPath `json:"learning_paths"`
	BudgetBreakdown map[string]any          `json:"budget_breakdown"`
	QuickWins       []string                `json:"quick_wins"`
	Summary         string                  `json:"summary"`
}

// CVAnalysis is one stored CV gap analysis, optionally carrying recommendations
type CVAnalysis struct {
	ID                 uuid.UUID                `json:"id"`
	UserID             uuid.UUID                `json:"user_id"`
	Profession         string                   `json:"profession"`
	CVContent          string                   `json:"cv_content"`
	FileName           string                   `json:"file_name,omitempty"`
	ObjectKey          string                   `json:"object_key,omitempty"`
	Gaps               GapAnalysis              `json:"gaps"`
	RawAnalysis        string                   `json:"raw_analysis"`
	Recommendations    *LearningRecommendations `json:"recommendations,omitempty"`
	RawRecommendations string                   `json:"raw_recommendations,omitempty"`
	AnalyzedAt         time.Time                `json:"analyzed_at"`
	RecommendedAt      *time.Time               `json:"recommended_at,omitempty"`
}

// ---------------------------------------------------------------------
// Job fit
// ---------------------------------------------------------------------

// JobAnalysis describes the role in a job posting
type JobAnalysis struct {
	JobTitle       string `json:"job_title"`
	Company        string `json:"company,omitempty"`
	SeniorityLevel string `json:"seniority_level,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
	Location       string `json:"location,omitempty"`
	SalaryRange    string `json:"salary_range,omitempty"`
}

// JobSkill is a skill named in a job posting
type JobSkill struct {
	Skill         string `json:"skill"`
	Category      string `json:"category,omitempty"`
	Importance    string `json:"importance,omitempty"`
	YearsRequired string `json:"years_required,omitempty"`
}

// Qualification is a qualification required by or matched against a posting
type Qualification struct {
	Qualification string `json:"qualification"`
	Type          string `json:"type,omitempty"`
	Strength      string `json:"strength,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// EligibilityAssessment is the headline fit verdict
type EligibilityAssessment struct {
	OverallFitScore           Score  `json:"overall_fit_score"`
	SkillsMatchPercentage     Score  `json:"skills_match_percentage"`
	ExperienceMatchPercentage Score  `json:"experience_match_percentage"`
	EducationMatchPercentage  Score  `json:"education_match_percentage"`
	HiringProbability         string `json:"hiring_probability"`
	ConfidenceLevel           string `json:"confidence_level"`
}

// MissingSkill is a posting skill the candidate lacks
type MissingSkill struct {
	Skill                 string `json:"skill"`
	GapSeverity           string `json:"gap_severity,omitempty"`
	ImpactOnCandidacy     string `json:"impact_on_candidacy,omitempty"`
	CurrentLevel          string `json:"current_level,omitempty"`
	RequiredLevel         string `json:"required_level,omitempty"`
	EstimatedLearningTime string `json:"estimated_learning_time,omitempty"`
}

// ImprovementRecommendation is an action plan for one area
type ImprovementRecommendation struct {
	Area          string   `json:"area"`
	Priority      Score    `json:"priority"`
	ActionItems   []string `json:"action_items,omitempty"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
	Resources     []string `json:"resources,omitempty"`
}

// PreparationTimeline estimates how long the candidate needs
type PreparationTimeline struct {
	MinimumTimeNeeded    string `json:"minimum_time_needed,omitempty"`
	RecommendedTime      string `json:"recommended_time,omitempty"`
	IntensivePreparation string `json:"intensive_preparation,omitempty"`
	PartTimePreparation  string `json:"part_time_preparation,omitempty"`
}

// ApplicationAdvice tells the candidate whether and how to apply
type ApplicationAdvice struct {
	ShouldApplyNow            bool     `json:"should_apply_now"`
	ReadinessPercentage       Score    `json:"readiness_percentage"`
	KeyPointsToHighlight      []string `json:"key_points_to_highlight,omitempty"`
	ResumeTips                []string `json:"resume_tips,omitempty"`
	CoverLetterFocusAreas     []string `json:"cover_letter_focus_areas,omitempty"`
	InterviewPreparationFocus []string `json:"interview_preparation_focus,omitempty"`
}

// JobFit is the record produced by the job fit analysis stage
type JobFit struct {
	JobAnalysis                JobAnalysis                 `json:"job_analysis"`
	RequiredSkills             []JobSkill                  `json:"required_skills"`
	PreferredSkills            []JobSkill                  `json:"preferred_skills"`
	RequiredQualifications     []Qualification             `json:"required_qualifications"`
	EligibilityAssessment      EligibilityAssessment       `json:"eligibility_assessment"`
	MatchingQualifications     []Qualification             `json:"matching_qualifications"`
	MissingCriticalSkills      []MissingSkill              `json:"missing_critical_skills"`
	MissingPreferredSkills     []MissingSkill              `json:"missing_preferred_skills"`
	ImprovementRecommendations []ImprovementRecommendation `json:"improvement_recommendations"`
	PreparationTimeline        PreparationTimeline         `json:"preparation_timeline"`
	ApplicationAdvice          ApplicationAdvice           `json:"application_advice"`
	DetailedAnalysis           string                      `json:"detailed_analysis"`
	NextSteps                  []string                    `json:"next_steps"`
	RawText                    string                      `json:"raw_text,omitempty"`
}

// ExperienceRequirement is the experience portion of a posting
type ExperienceRequirement struct {
	Years string   `json:"years"`
	Types []string `json:"types"`
}

// JobRequirements is the record produced by job requirement extraction
type JobRequirements struct {
	JobTitle             string                `json:"job_title"`
	SeniorityLevel       string                `json:"seniority_level"`
	TechnicalSkills      []string              `json:"technical_skills"`
	SoftSkills           []string              `json:"soft_skills"`
	EducationRequired    []string              `json:"education_required"`
	ExperienceRequired   ExperienceRequirement `json:"experience_required"`
	Certifications       []string              `json:"certifications"`
	ToolsAndTechnologies []string              `json:"tools_and_technologies"`
	KeyResponsibilities  []string              `json:"key_responsibilities"`
	RawText              string                `json:"raw_text,omitempty"`
}

// JobFitReport is the stored outcome of a job fit request
type JobFitReport struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	SourceURL      string          `json:"source_url,omitempty"`
	SourcePlatform string          `json:"source_platform,omitempty"`
	PostingHash    string          `json:"posting_hash,omitempty"`
	Fit            JobFit          `json:"fit"`
	Requirements   JobRequirements `json:"requirements"`
	CreatedAt      time.Time       `json:"created_at"`
}
