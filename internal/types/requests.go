package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateUserRequest registers a coaching user. Password is optional when
// authentication is disabled.
type CreateUserRequest struct {
	Name            string `json:"name" validate:"required,min=1"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=8"`
	Profession      string `json:"profession" validate:"required"`
	ExperienceLevel string `json:"experience_level,omitempty" validate:"omitempty,oneof=junior mid-level senior expert"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by register and login.
type LoginResponse struct {
	User  *PublicUser `json:"user"`
	Token string      `json:"token,omitempty"`
}

// CreateCandidateRequest creates a candidate for evaluation.
type CreateCandidateRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone,omitempty"`
	PositionApplied string `json:"position_applied" validate:"required"`
}

// TextUploadRequest is the JSON alternative to a multipart document upload.
type TextUploadRequest struct {
	Content         string `json:"content" validate:"required"`
	FileName        string `json:"file_name,omitempty"`
	Interviewer     string `json:"interviewer,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty" validate:"gte=0"`
}

// RecommendationRequest asks for learning recommendations on a stored CV analysis.
type RecommendationRequest struct {
	AvailableTime string `json:"available_time,omitempty"`
	Budget        string `json:"budget,omitempty"`
}

// JobFitRequest asks for a fit analysis against a job description or posting URL.
type JobFitRequest struct {
	JobDescription string `json:"job_description,omitempty" validate:"required_without=JobURL"`
	JobURL         string `json:"job_url,omitempty" validate:"omitempty,url"`
	UseBrowser     bool   `json:"use_browser,omitempty"`
}

// StartSessionRequest opens a practice interview session.
type StartSessionRequest struct {
	Profession string `json:"profession,omitempty"`
}

// StartRoundRequest starts the next round of a session.
type StartRoundRequest struct {
	Difficulty string   `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard mixed"`
	FocusAreas []string `json:"focus_areas,omitempty" validate:"omitempty,max=10,dive,required"`
}

// SubmitAnswerRequest answers one question of a round.
type SubmitAnswerRequest struct {
	QuestionID QuestionID `json:"question_id" validate:"required"`
	Answer     string     `json:"answer" validate:"required"`
}

// FollowUpRequest asks for an adaptive follow-up question.
type FollowUpRequest struct {
	RoundID   string `json:"round_id,omitempty" validate:"omitempty,uuid"`
	FocusArea string `json:"focus_area" validate:"required"`
}

// Validate validates the CreateUserRequest using the validator.
func (r *CreateUserRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the CreateCandidateRequest using the validator.
func (r *CreateCandidateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the TextUploadRequest using the validator.
func (r *TextUploadRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the JobFitRequest using the validator.
func (r *JobFitRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the StartRoundRequest using the validator.
func (r *StartRoundRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SubmitAnswerRequest using the validator.
func (r *SubmitAnswerRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the FollowUpRequest using the validator.
func (r *FollowUpRequest) Validate() error {
	return validate.Struct(r)
}
