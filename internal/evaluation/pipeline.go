// Package evaluation runs the three-stage candidate evaluation pipeline:
// resume analysis, interview evaluation and final scoring.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-coach/internal/extract"
	"github.com/jonathan/hiring-coach/internal/llm"
	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/prompts"
	"github.com/jonathan/hiring-coach/internal/types"
)

// Stage names, used in progress events and logs.
const (
	StageResumeAnalysis      = "resume_analysis"
	StageInterviewEvaluation = "interview_evaluation"
	StageFinalScoring        = "final_scoring"
)

// Progress statuses.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Input is everything the pipeline reads about one candidate.
type Input struct {
	CandidateID uuid.UUID
	Position    string
	Resume      string
	Transcript  string
}

// Prior carries the assessments of earlier stages into later prompts.
// Only the summary strings are passed on, never whole records.
type Prior struct {
	ResumeAssessment    string
	InterviewAssessment string
}

// Stage is one blocking collaborator call returning the raw response and
// the record extracted from it.
type Stage[R any] func(ctx context.Context, in Input, prior Prior) (string, R, error)

// ProgressEvent reports a stage transition during a run
type ProgressEvent struct {
	Step        string    `json:"step"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Content     any       `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Pipeline chains the three evaluation stages.
type Pipeline struct {
	Resume    Stage[types.ResumeAnalysis]
	Interview Stage[types.InterviewEvaluation]
	Scoring   Stage[types.ScoringRecord]

	now func() time.Time
}

// NewPipeline builds the default stages over client.
func NewPipeline(client llm.Client) *Pipeline {
	return &Pipeline{
		Resume:    ResumeStage(client),
		Interview: InterviewStage(client),
		Scoring:   ScoringStage(client),
		now:       time.Now,
	}
}

// Run executes the stages strictly in order and assembles the result.
// Any stage failure aborts the run; the caller persists nothing.
func (p *Pipeline) Run(ctx context.Context, in Input, onProgress ProgressCallback) (*types.EvaluationResult, error) {
	log := logger.Ctx(ctx).With().Str("candidate_id", in.CandidateID.String()).Logger()
	ctx = logger.WithContext(ctx, log)

	resume, err := runStage(ctx, StageResumeAnalysis, p.Resume, in, Prior{}, onProgress)
	if err != nil {
		return nil, err
	}

	prior := Prior{ResumeAssessment: resume.Record.OverallAssessment}
	interview, err := runStage(ctx, StageInterviewEvaluation, p.Interview, in, prior, onProgress)
	if err != nil {
		return nil, err
	}

	prior.InterviewAssessment = interview.Record.OverallAssessment
	scoring, err := runStage(ctx, StageFinalScoring, p.Scoring, in, prior, onProgress)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if p.now != nil {
		now = p.now
	}
	result := Assemble(in, resume, interview, scoring, now().UTC())

	log.Info().
		Float64("overall_score", result.OverallScore).
		Str("recommendation", string(result.Recommendation)).
		Msg("evaluation pipeline completed")
	return result, nil
}

func runStage[R any](ctx context.Context, name string, stage Stage[R], in Input, prior Prior,
	onProgress ProgressCallback) (types.StageOutput[R], error) {
	log := logger.Ctx(ctx)
	emit := func(status, message string, content any) {
		if onProgress != nil {
			onProgress(ProgressEvent{
				Step:        name,
				Status:      status,
				Message:     message,
				CandidateID: in.CandidateID,
				Content:     content,
			})
		}
	}

	emit(StatusStarted, fmt.Sprintf("Running %s", name), nil)
	start := time.Now()

	raw, rec, err := stage(ctx, in, prior)
	if err != nil {
		var upstream *llm.UpstreamError
		if !errors.As(err, &upstream) {
			err = &llm.UpstreamError{Op: name, Cause: err}
		}
		log.Error().Err(err).Str("stage", name).Dur("duration", time.Since(start)).Msg("stage failed")
		emit(StatusFailed, err.Error(), nil)
		return types.StageOutput[R]{}, fmt.Errorf("%s stage: %w", name, err)
	}

	log.Info().Str("stage", name).Dur("duration", time.Since(start)).Int("response_length", len(raw)).
		Msg("stage completed")
	emit(StatusCompleted, fmt.Sprintf("Completed %s", name), rec)
	return types.StageOutput[R]{Raw: raw, Record: rec}, nil
}

// ResumeStage analyzes the resume text against the position.
func ResumeStage(client llm.Client) Stage[types.ResumeAnalysis] {
	return func(ctx context.Context, in Input, _ Prior) (string, types.ResumeAnalysis, error) {
		raw, err := generate(ctx, client, "resume-analysis", llm.TierStandard, map[string]string{
			"Position":      in.Position,
			"ResumeContent": in.Resume,
		})
		if err != nil {
			return "", types.ResumeAnalysis{}, err
		}
		return raw, extract.Decode(ctx, raw, extract.ResumeAnalysis), nil
	}
}

// InterviewStage evaluates the transcript, given the resume assessment.
func InterviewStage(client llm.Client) Stage[types.InterviewEvaluation] {
	return func(ctx context.Context, in Input, prior Prior) (string, types.InterviewEvaluation, error) {
		raw, err := generate(ctx, client, "interview-evaluation", llm.TierStandard, map[string]string{
			"Position":          in.Position,
			"ResumeSummary":     prior.ResumeAssessment,
			"TranscriptContent": in.Transcript,
		})
		if err != nil {
			return "", types.InterviewEvaluation{}, err
		}
		return raw, extract.Decode(ctx, raw, extract.InterviewEvaluation), nil
	}
}

// ScoringStage produces the final scores from both assessments.
func ScoringStage(client llm.Client) Stage[types.ScoringRecord] {
	return func(ctx context.Context, in Input, prior Prior) (string, types.ScoringRecord, error) {
		raw, err := generate(ctx, client, "final-scoring", llm.TierAdvanced, map[string]string{
			"Position":            in.Position,
			"ResumeAssessment":    prior.ResumeAssessment,
			"InterviewAssessment": prior.InterviewAssessment,
		})
		if err != nil {
			return "", types.ScoringRecord{}, err
		}
		return raw, extract.Decode(ctx, raw, extract.Scoring), nil
	}
}

func generate(ctx context.Context, client llm.Client, key string, tier llm.ModelTier, data map[string]string) (string, error) {
	prompt, err := prompts.Render(prompts.EvaluationFile, key, data)
	if err != nil {
		return "", err
	}
	logger.Ctx(ctx).Debug().Str("prompt", key).Int("prompt_length", len(prompt)).
		Str("model", client.GetModel(tier)).Msg("calling collaborator")
	return client.GenerateJSON(ctx, prompt, tier)
}
