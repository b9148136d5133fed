package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state shared by sessions and rounds
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// QuestionID identifies a question within a round. Generated question sets
// number their questions, so numeric JSON ids are accepted and stored as text.
type QuestionID string

// UnmarshalJSON implements json.Unmarshaler.
func (q *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = QuestionID(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	*q = QuestionID(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// Question is one generated interview question
type Question struct {
	ID                 QuestionID `json:"id"`
	Question           string     `json:"question"`
	Type               string     `json:"type,omitempty"`
	Difficulty         string     `json:"difficulty,omitempty"`
	FocusArea          string     `json:"focus_area,omitempty"`
	TimeLimitMinutes   Score      `json:"time_limit_minutes,omitempty"`
	EvaluationCriteria []string   `json:"evaluation_criteria,omitempty"`
	FollowUpQuestions  []string   `json:"follow_up_questions,omitempty"`
}

// InterviewStructure describes a generated question set
type InterviewStructure struct {
	TotalQuestions           Score            `json:"total_questions,omitempty"`
	EstimatedDurationMinutes Score            `json:"estimated_duration_minutes,omitempty"`
	DifficultyDistribution   map[string]Score `json:"difficulty_distribution,omitempty"`
	RecommendedOrder         string           `json:"recommended_order,omitempty"`
}

// QuestionSet is the record produced by question generation
type QuestionSet struct {
	Questions          []Question         `json:"questions"`
	InterviewStructure InterviewStructure `json:"interview_structure"`
	Introduction       string             `json:"introduction"`
	Closing            string             `json:"closing"`
	RawText            string             `json:"raw_text,omitempty"`
}

// AnswerEvaluation is the record produced by evaluating one answer
type AnswerEvaluation struct {
	Score                  Score    `json:"score"`
	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	MissingPoints          []string `json:"missing_points"`
	TechnicalAccuracy      Score    `json:"technical_accuracy"`
	ClarityOfExplanation   Score    `json:"clarity_of_explanation"`
	DepthOfKnowledge       Score    `json:"depth_of_knowledge"`
	PracticalApplication   Score    `json:"practical_application"`
	DetailedFeedback       string   `json:"detailed_feedback"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	FollowUpNeeded         bool     `json:"follow_up_needed"`
	RecommendedFollowUp    string   `json:"recommended_follow_up"`
	RawText                string   `json:"raw_text,omitempty"`
}

// FollowUpQuestion is the record produced by adaptive follow-up generation
type FollowUpQuestion struct {
	Question           string   `json:"question"`
	Rationale          string   `json:"rationale"`
	Type               string   `json:"type"`
	Difficulty         string   `json:"difficulty"`
	EvaluationCriteria []string `json:"evaluation_criteria"`
	TimeLimitMinutes   Score    `json:"time_limit_minutes"`
	RawText            string   `json:"raw_text,omitempty"`
}

// WeakTopic is a topic flagged by performance analysis as needing practice.
// A bare JSON string is accepted as the topic name.
type WeakTopic struct {
	Topic                   string   `json:"topic"`
	CurrentLevel            string   `json:"current_level,omitempty"`
	RequiredLevel           string   `json:"required_level,omitempty"`
	Priority                string   `json:"priority,omitempty"`
	PracticeRecommendations []string `json:"practice_recommendations,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. Values that are neither a
// string nor an object are ignored.
func (w *WeakTopic) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &w.Topic)
	case '{':
		type plain WeakTopic
		var typeErr *json.UnmarshalTypeError
		if err := json.Unmarshal(data, (*plain)(w)); err != nil && !errors.As(err, &typeErr) {
			return err
		}
	}
	return nil
}

// PerformanceNote is a strength or weakness observed across a round
type PerformanceNote struct {
	Area        string `json:"area"`
	Severity    string `json:"severity,omitempty"`
	Description string `json:"description,omitempty"`
	Evidence    string `json:"evidence,omitempty"`
	Impact      string `json:"impact,omitempty"`
}

// Readiness is the performance analyzer's verdict on the next interview
type Readiness struct {
	Ready               bool     `json:"ready"`
	ConfidenceLevel     string   `json:"confidence_level,omitempty"`
	RecommendedWaitTime string   `json:"recommended_wait_time,omitempty"`
	AreasToPractice     []string `json:"areas_to_practice,omitempty"`
	ExpectedImprovement string   `json:"expected_improvement,omitempty"`
}

// PerformanceAnalysis is the record produced by analyzing a whole round
type PerformanceAnalysis struct {
	OverallScore           Score             `json:"overall_score"`
	PerformanceLevel       string            `json:"performance_level"`
	CategoryScores         map[string]Score  `json:"category_scores"`
	Strengths              []PerformanceNote `json:"strengths"`
	Weaknesses             []PerformanceNote `json:"weaknesses"`
	WeakTopics             []WeakTopic       `json:"weak_topics"`
	QuestionTypeAnalysis   map[string]any    `json:"question_type_analysis"`
	BehavioralPatterns     []map[string]any  `json:"behavioral_patterns"`
	PreparationPlan        map[string]any    `json:"preparation_plan"`
	NextInterviewReadiness Readiness         `json:"next_interview_readiness"`
	DetailedFeedback       string            `json:"detailed_feedback"`
	MotivationalMessage    string            `json:"motivational_message"`
	RawAnalysis            string            `json:"raw_analysis,omitempty"`
}

// PracticeDay is one day of a practice plan
type PracticeDay struct {
	Day               Score            `json:"day"`
	Date              string           `json:"date,omitempty"`
	FocusTopics       []string         `json:"focus_topics,omitempty"`
	Activities        []map[string]any `json:"activities,omitempty"`
	PracticeQuestions []string         `json:"practice_questions,omitempty"`
	SelfAssessment    string           `json:"self_assessment,omitempty"`
	DailyGoal         string           `json:"daily_goal,omitempty"`
}

// MockQuestion is a question to rehearse
type MockQuestion struct {
	Question   string `json:"question"`
	Topic      string `json:"topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	TimeLimit  string `json:"time_limit,omitempty"`
}

// Checkpoint is a self-assessment milestone in a practice plan
type Checkpoint struct {
	Checkpoint       string   `json:"checkpoint"`
	TopicsToMaster   []string `json:"topics_to_master,omitempty"`
	AssessmentMethod string   `json:"assessment_method,omitempty"`
	SuccessCriteria  string   `json:"success_criteria,omitempty"`
}

// FinalPreparation is the last-day portion of a practice plan
type FinalPreparation struct {
	LastDayActivities  []string `json:"last_day_activities,omitempty"`
	QuickReviewTopics  []string `json:"quick_review_topics,omitempty"`
	ConfidenceBoosters []string `json:"confidence_boosters,omitempty"`
}

// PracticePlan is the record produced by practice plan generation
type PracticePlan struct {
	TotalDuration          string           `json:"total_duration"`
	DailySchedule          []PracticeDay    `json:"daily_schedule"`
	MockInterviewQuestions []MockQuestion   `json:"mock_interview_questions"`
	ProgressCheckpoints    []Checkpoint     `json:"progress_checkpoints"`
	FinalPreparation       FinalPreparation `json:"final_preparation"`
	SuccessTips            []string         `json:"success_tips"`
	EstimatedImprovement   string           `json:"estimated_improvement"`
	RawText                string           `json:"raw_text,omitempty"`
}

// QuestionAnswer is one submitted answer together with its evaluation
type QuestionAnswer struct {
	QuestionID   QuestionID       `json:"question_id"`
	QuestionText string           `json:"question_text"`
	QuestionType string           `json:"question_type,omitempty"`
	Difficulty   string           `json:"difficulty,omitempty"`
	Answer       string           `json:"answer"`
	Evaluation   AnswerEvaluation `json:"evaluation"`
	AnsweredAt   time.Time        `json:"answered_at"`
}

// InterviewRound is one batch of questions plus collected answers
type InterviewRound struct {
	ID          uuid.UUID            `json:"id"`
	RoundNumber int                  `json:"round_number"`
	Difficulty  string               `json:"difficulty"`
	FocusAreas  []string             `json:"focus_areas"`
	Questions   []Question           `json:"questions"`
	Answers     []QuestionAnswer     `json:"answers"`
	Score       *float64             `json:"score,omitempty"`
	Feedback    string               `json:"feedback,omitempty"`
	Analysis    *PerformanceAnalysis `json:"analysis,omitempty"`
	Status      Status               `json:"status"`
	StartedAt   *time.Time           `json:"started_at,omitempty"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

// FindQuestion returns the question with the given id.
func (r *InterviewRound) FindQuestion(id QuestionID) (*Question, bool) {
	for i := range r.Questions {
		if r.Questions[i].ID == id {
			return &r.Questions[i], true
		}
	}
	return nil, false
}

// InterviewSession tracks the rounds of one practice interview series
type InterviewSession struct {
	ID                  uuid.UUID        `json:"id"`
	UserID              uuid.UUID        `json:"user_id"`
	Profession          string           `json:"profession"`
	ExperienceLevel     string           `json:"experience_level"`
	Status              Status           `json:"status"`
	TotalRounds         int              `json:"total_rounds"`
	CurrentRound        int              `json:"current_round"`
	Rounds              []InterviewRound `json:"rounds"`
	OverallScore        *float64         `json:"overall_score,omitempty"`
	BestScore           float64          `json:"best_score"`
	ImprovementRate     *float64         `json:"improvement_rate,omitempty"`
	WeakTopics          []WeakTopic      `json:"weak_topics"`
	PracticePlan        *PracticePlan    `json:"practice_plan,omitempty"`
	IsReadyForNextRound bool             `json:"is_ready_for_next_round"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
}

// FindRound returns the round with the given id.
func (s *InterviewSession) FindRound(id uuid.UUID) (*InterviewRound, bool) {
	for i := range s.Rounds {
		if s.Rounds[i].ID == id {
			return &s.Rounds[i], true
		}
	}
	return nil, false
}

// LastCompletedRound returns the most recently sealed round, if any.
func (s *InterviewSession) LastCompletedRound() (*InterviewRound, bool) {
	for i := len(s.Rounds) - 1; i >= 0; i-- {
		if s.Rounds[i].Status == StatusCompleted {
			return &s.Rounds[i], true
		}
	}
	return nil, false
}

// TopWeakTopics returns up to n weak topic names in priority order.
func (s *InterviewSession) TopWeakTopics(n int) []string {
	topics := make([]string, 0, n)
	for _, wt := range s.WeakTopics {
		if len(topics) == n {
			break
		}
		if wt.Topic != "" {
			topics = append(topics, wt.Topic)
		}
	}
	return topics
}

// Dashboard aggregates a user's coaching progress
type Dashboard struct {
	User             *PublicUser       `json:"user"`
	CurrentSession   *InterviewSession `json:"current_session,omitempty"`
	LatestCVAnalysis *CVAnalysis       `json:"latest_cv_analysis,omitempty"`
	Stats            DashboardStats    `json:"stats"`
}

// DashboardStats are derived counters shown on the dashboard
type DashboardStats struct {
	TotalInterviews   int      `json:"total_interviews"`
	CompletedSessions int      `json:"completed_sessions"`
	AverageScore      float64  `json:"average_score"`
	BestScore         float64  `json:"best_score"`
	ReadinessScore    float64  `json:"readiness_score"`
	WeakTopics        []string `json:"weak_topics"`
}
