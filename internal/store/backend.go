// Package store persists domain entities as JSON documents keyed by kind and id.
// A Backend moves opaque bytes; Collection adds typing and NotFound semantics.
package store

import (
	"context"
	"errors"
)

// Kind names an entity collection.
type Kind string

// Entity kinds.
const (
	KindCandidate  Kind = "candidate"
	KindResume     Kind = "resume"
	KindInterview  Kind = "interview"
	KindEvaluation Kind = "evaluation"
	KindUser       Kind = "user"
	KindCVAnalysis Kind = "cv_analysis"
	KindSession    Kind = "session"
	KindJobFit     Kind = "job_fit"
)

// ErrNotFound is returned by backends for a missing document.
var ErrNotFound = errors.New("document not found")

// Backend stores JSON documents.
// List returns documents ordered by id.
type Backend interface {
	Get(ctx context.Context, kind Kind, id string) ([]byte, error)
	Put(ctx context.Context, kind Kind, id string, data []byte) error
	Delete(ctx context.Context, kind Kind, id string) error
	List(ctx context.Context, kind Kind) ([][]byte, error)
	Close() error
}
