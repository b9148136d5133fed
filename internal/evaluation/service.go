package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-coach/internal/apperr"
	"github.com/jonathan/hiring-coach/internal/blob"
	"github.com/jonathan/hiring-coach/internal/ingestion"
	"github.com/jonathan/hiring-coach/internal/lock"
	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/queue"
	"github.com/jonathan/hiring-coach/internal/store"
	"github.com/jonathan/hiring-coach/internal/types"
)

// Document is an uploaded resume or transcript. Either Text or Data is set;
// Data is converted to text according to MimeType.
type Document struct {
	Text            string
	Data            []byte
	FileName        string
	MimeType        string
	Interviewer     string
	DurationMinutes int
}

// Option configures a Service.
type Option func(*Service)

// WithBlobStore archives raw uploaded files in b.
func WithBlobStore(b blob.Store) Option {
	return func(s *Service) { s.blobs = b }
}

// WithPublisher enables asynchronous evaluation through p.
func WithPublisher(p queue.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// Service manages candidates and their evaluations.
type Service struct {
	store     *store.Store
	pipeline  *Pipeline
	blobs     blob.Store
	publisher queue.Publisher
	locks     lock.Keyed
	now       func() time.Time
}

// NewService creates a Service over st running evaluations with p.
func NewService(st *store.Store, p *Pipeline, opts ...Option) *Service {
	s := &Service{store: st, pipeline: p, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCandidate stores a new candidate with status created.
func (s *Service) CreateCandidate(ctx context.Context, req *types.CreateCandidateRequest) (*types.Candidate, error) {
	now := s.now().UTC()
	c := &types.Candidate{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		PositionApplied: strings.TrimSpace(req.PositionApplied),
		Status:          types.CandidateCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Candidates.Put(ctx, c.ID, c); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("candidate_id", c.ID.String()).Str("position", c.PositionApplied).
		Msg("candidate created")
	return c, nil
}

// GetCandidate loads a candidate.
func (s *Service) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	return s.store.Candidates.Get(ctx, id)
}

// ListCandidates returns every candidate, oldest first.
func (s *Service) ListCandidates(ctx context.Context) ([]*types.Candidate, error) {
	all, err := s.store.Candidates.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all, nil
}

// DeleteCandidate removes a candidate together with its documents.
// Evaluation results are kept.
func (s *Service) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	c, err := s.store.Candidates.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.ResumeID != nil {
		s.deleteDocument(ctx, *c.ResumeID, s.store.Resumes.Delete)
	}
	if c.InterviewID != nil {
		s.deleteDocument(ctx, *c.InterviewID, s.store.Interviews.Delete)
	}
	return s.store.Candidates.Delete(ctx, id)
}

func (s *Service) deleteDocument(ctx context.Context, id uuid.UUID, del func(context.Context, uuid.UUID) error) {
	var nf *apperr.NotFoundError
	if err := del(ctx, id); err != nil && !errors.As(err, &nf) {
		logger.Ctx(ctx).Warn().Err(err).Str("document_id", id.String()).Msg("failed to delete document")
	}
}

// AttachResume stores a resume and points the candidate at it. A previous
// resume stays stored; only the reference is replaced.
func (s *Service) AttachResume(ctx context.Context, candidateID uuid.UUID, doc Document) (*types.Resume, error) {
	text, err := documentText(doc)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(candidateID.String())
	defer unlock()

	c, err := s.store.Candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	r := &types.Resume{
		ID:          uuid.New(),
		CandidateID: candidateID,
		Content:     text,
		FileName:    doc.FileName,
		FileType:    doc.MimeType,
		UploadedAt:  s.now().UTC(),
	}
	r.ObjectKey = s.archive(ctx, "resumes", candidateID, r.ID, doc)
	if err := s.store.Resumes.Put(ctx, r.ID, r); err != nil {
		return nil, err
	}

	c.ResumeID = &r.ID
	if err := s.saveCandidate(ctx, c); err != nil {
		return nil, err
	}
	return r, nil
}

// AttachInterview stores an interview transcript and points the candidate at it.
func (s *Service) AttachInterview(ctx context.Context, candidateID uuid.UUID, doc Document) (*types.InterviewTranscript, error) {
	text, err := documentText(doc)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(candidateID.String())
	defer unlock()

	c, err := s.store.Candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	t := &types.InterviewTranscript{
		ID:              uuid.New(),
		CandidateID:     candidateID,
		Content:         text,
		Interviewer:     doc.Interviewer,
		DurationMinutes: doc.DurationMinutes,
		FileName:        doc.FileName,
		UploadedAt:      s.now().UTC(),
	}
	t.ObjectKey = s.archive(ctx, "transcripts", candidateID, t.ID, doc)
	if err := s.store.Interviews.Put(ctx, t.ID, t); err != nil {
		return nil, err
	}

	c.InterviewID = &t.ID
	if err := s.saveCandidate(ctx, c); err != nil {
		return nil, err
	}
	return t, nil
}

// saveCandidate advances created to ready once both documents are attached.
func (s *Service) saveCandidate(ctx context.Context, c *types.Candidate) error {
	if c.Status == types.CandidateCreated && c.HasDocuments() {
		c.Status = types.CandidateReady
	}
	c.UpdatedAt = s.now().UTC()
	return s.store.Candidates.Put(ctx, c.ID, c)
}

func documentText(doc Document) (string, error) {
	return ingestion.Upload{
		Text:     doc.Text,
		Data:     doc.Data,
		FileName: doc.FileName,
		MimeType: doc.MimeType,
	}.Content()
}

// archive stores the raw upload when object storage is configured.
// Archival is best effort.
func (s *Service) archive(ctx context.Context, folder string, owner, id uuid.UUID, doc Document) string {
	if s.blobs == nil || len(doc.Data) == 0 {
		return ""
	}
	key := blob.Key(folder, owner, id, doc.FileName)
	if err := s.blobs.Put(ctx, key, doc.Data, doc.MimeType); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to archive document")
		return ""
	}
	return key
}

// Evaluate runs the pipeline for a candidate with both documents attached
// and stores the result. Nothing is stored when any stage fails.
//
// The candidate lock is held while reading the documents and while storing
// the result, not across the collaborator calls. A document replaced during
// the run does not affect the result being computed.
func (s *Service) Evaluate(ctx context.Context, candidateID uuid.UUID, onProgress ProgressCallback) (*types.EvaluationResult, error) {
	unlock := s.locks.Lock(candidateID.String())
	_, in, err := s.loadInput(ctx, candidateID)
	unlock()
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.Run(ctx, in, onProgress)
	if err != nil {
		return nil, err
	}

	unlock = s.locks.Lock(candidateID.String())
	defer unlock()

	c, err := s.store.Candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Evaluations.Put(ctx, result.ID, result); err != nil {
		return nil, err
	}
	c.EvaluationID = &result.ID
	c.Status = types.CandidateEvaluated
	c.UpdatedAt = s.now().UTC()
	if err := s.store.Candidates.Put(ctx, c.ID, c); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) loadInput(ctx context.Context, candidateID uuid.UUID) (*types.Candidate, Input, error) {
	c, err := s.store.Candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, Input{}, err
	}
	if c.ResumeID == nil {
		return nil, Input{}, apperr.Invalid("resume", "candidate %s has no resume", candidateID)
	}
	if c.InterviewID == nil {
		return nil, Input{}, apperr.Invalid("interview", "candidate %s has no interview transcript", candidateID)
	}

	resume, err := s.store.Resumes.Get(ctx, *c.ResumeID)
	if err != nil {
		return nil, Input{}, err
	}
	transcript, err := s.store.Interviews.Get(ctx, *c.InterviewID)
	if err != nil {
		return nil, Input{}, err
	}

	return c, Input{
		CandidateID: c.ID,
		Position:    c.PositionApplied,
		Resume:      resume.Content,
		Transcript:  transcript.Content,
	}, nil
}

// Enqueue checks the candidate can be evaluated and publishes a job for
// the worker.
func (s *Service) Enqueue(ctx context.Context, candidateID uuid.UUID, requestID string) error {
	if s.publisher == nil {
		return apperr.Invalid("async", "asynchronous evaluation is not configured")
	}
	if _, _, err := s.loadInput(ctx, candidateID); err != nil {
		return err
	}
	return s.publisher.Publish(ctx, queue.EvaluationJob{
		CandidateID: candidateID,
		RequestID:   requestID,
		RequestedAt: s.now().UTC(),
	})
}

// HandleJob is the queue handler for evaluation jobs. Jobs that can never
// succeed are logged and acknowledged.
func (s *Service) HandleJob(ctx context.Context, job queue.EvaluationJob) error {
	log := logger.Ctx(ctx).With().Str("candidate_id", job.CandidateID.String()).
		Str("request_id", job.RequestID).Logger()

	result, err := s.Evaluate(logger.WithContext(ctx, log), job.CandidateID, nil)
	if err != nil {
		var (
			nf      *apperr.NotFoundError
			invalid *apperr.ValidationError
		)
		if errors.As(err, &nf) || errors.As(err, &invalid) {
			log.Warn().Err(err).Msg("discarding evaluation job")
			return nil
		}
		return err
	}
	log.Info().Str("evaluation_id", result.ID.String()).Msg("evaluation job completed")
	return nil
}

// GetEvaluation returns the latest result stored for a candidate.
func (s *Service) GetEvaluation(ctx context.Context, candidateID uuid.UUID) (*types.EvaluationResult, error) {
	c, err := s.store.Candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if c.EvaluationID == nil {
		return nil, apperr.NotFound("evaluation", candidateID)
	}
	return s.store.Evaluations.Get(ctx, *c.EvaluationID)
}

// ListEvaluations returns summaries of every stored result, newest first.
func (s *Service) ListEvaluations(ctx context.Context) ([]types.EvaluationSummary, error) {
	all, err := s.store.Evaluations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].EvaluatedAt.After(all[j].EvaluatedAt)
	})
	out := make([]types.EvaluationSummary, 0, len(all))
	for _, r := range all {
		out = append(out, r.Summary())
	}
	return out, nil
}
