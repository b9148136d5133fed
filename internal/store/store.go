package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-coach/internal/apperr"
	"github.com/jonathan/hiring-coach/internal/config"
	"github.com/jonathan/hiring-coach/internal/types"
)

// Collection is a typed view over one kind of a Backend.
type Collection[T any] struct {
	backend Backend
	kind    Kind
}

// NewCollection returns a Collection of kind over b.
func NewCollection[T any](b Backend, kind Kind) *Collection[T] {
	return &Collection[T]{backend: b, kind: kind}
}

// Get loads the entity with id. A missing id is an *apperr.NotFoundError.
func (c *Collection[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	data, err := c.backend.Get(ctx, c.kind, id.String())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound(string(c.kind), id)
		}
		return nil, fmt.Errorf("failed to get %s %s: %w", c.kind, id, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", c.kind, id, err)
	}
	return &v, nil
}

// Put creates or replaces the entity with id.
func (c *Collection[T]) Put(ctx context.Context, id uuid.UUID, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", c.kind, id, err)
	}
	if err := c.backend.Put(ctx, c.kind, id.String(), data); err != nil {
		return fmt.Errorf("failed to put %s %s: %w", c.kind, id, err)
	}
	return nil
}

// Delete removes the entity with id. A missing id is an *apperr.NotFoundError.
func (c *Collection[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.backend.Delete(ctx, c.kind, id.String()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound(string(c.kind), id)
		}
		return fmt.Errorf("failed to delete %s %s: %w", c.kind, id, err)
	}
	return nil
}

// List loads every entity of the collection, ordered by id.
func (c *Collection[T]) List(ctx context.Context) ([]*T, error) {
	docs, err := c.backend.List(ctx, c.kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.kind, err)
	}

	out := make([]*T, 0, len(docs))
	for _, data := range docs {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", c.kind, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// Store groups the collections used by the services.
type Store struct {
	backend Backend

	Candidates  *Collection[types.Candidate]
	Resumes     *Collection[types.Resume]
	Interviews  *Collection[types.InterviewTranscript]
	Evaluations *Collection[types.EvaluationResult]
	Users       *Collection[types.User]
	CVAnalyses  *Collection[types.CVAnalysis]
	Sessions    *Collection[types.InterviewSession]
	JobFits     *Collection[types.JobFitReport]
}

// New builds a Store over b.
func New(b Backend) *Store {
	return &Store{
		backend:     b,
		Candidates:  NewCollection[types.Candidate](b, KindCandidate),
		Resumes:     NewCollection[types.Resume](b, KindResume),
		Interviews:  NewCollection[types.InterviewTranscript](b, KindInterview),
		Evaluations: NewCollection[types.EvaluationResult](b, KindEvaluation),
		Users:       NewCollection[types.User](b, KindUser),
		CVAnalyses:  NewCollection[types.CVAnalysis](b, KindCVAnalysis),
		Sessions:    NewCollection[types.InterviewSession](b, KindSession),
		JobFits:     NewCollection[types.JobFitReport](b, KindJobFit),
	}
}

// NewMemory returns a Store backed by process memory.
func NewMemory() *Store {
	return New(NewMemoryBackend())
}

// Open connects the backend selected by cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory, "":
		b = NewMemoryBackend()
	case config.BackendPostgres:
		b, err = OpenPostgres(ctx, cfg.DatabaseURL)
	case config.BackendRedis:
		b, err = OpenRedis(ctx, cfg.RedisURL)
	case config.BackendSQLite:
		b, err = OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
