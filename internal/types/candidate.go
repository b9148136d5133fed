package types

import (
	"time"

	"github.com/google/uuid"
)

// CandidateStatus tracks how far a candidate has progressed through evaluation
type CandidateStatus string

const (
	// CandidateCreated means no documents have been attached yet
	CandidateCreated CandidateStatus = "created"
	// CandidateReady means both resume and interview transcript are attached
	CandidateReady CandidateStatus = "ready"
	// CandidateEvaluated means at least one evaluation result exists
	CandidateEvaluated CandidateStatus = "evaluated"
)

// Candidate is a job applicant under evaluation
type Candidate struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	PositionApplied string          `json:"position_applied"`
	Status          CandidateStatus `json:"status"`
	ResumeID        *uuid.UUID      `json:"resume_id,omitempty"`
	InterviewID     *uuid.UUID      `json:"interview_id,omitempty"`
	EvaluationID    *uuid.UUID      `json:"evaluation_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// HasDocuments reports whether both the resume and the interview transcript are attached.
func (c *Candidate) HasDocuments() bool {
	return c.ResumeID != nil && c.InterviewID != nil
}

// Resume is the extracted text of an uploaded resume. It is never mutated after creation.
type Resume struct {
	ID          uuid.UUID `json:"id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Content     string    `json:"content"`
	FileName    string    `json:"file_name,omitempty"`
	FileType    string    `json:"file_type,omitempty"`
	ObjectKey   string    `json:"object_key,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// InterviewTranscript is the extracted text of an interview. It is never mutated after creation.
type InterviewTranscript struct {
	ID              uuid.UUID `json:"id"`
	CandidateID     uuid.UUID `json:"candidate_id"`
	Content         string    `json:"content"`
	Interviewer     string    `json:"interviewer,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	FileName        string    `json:"file_name,omitempty"`
	ObjectKey       string    `json:"object_key,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
}
