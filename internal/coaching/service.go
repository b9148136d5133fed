package coaching

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hiring-coach/internal/apperr"
	"github.com/jonathan/hiring-coach/internal/blob"
	"github.com/jonathan/hiring-coach/internal/config"
	"github.com/jonathan/hiring-coach/internal/ingestion"
	"github.com/jonathan/hiring-coach/internal/lock"
	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/store"
	"github.com/jonathan/hiring-coach/internal/types"
)

// Fetcher retrieves the text of a job posting URL.
type Fetcher func(ctx context.Context, url string, useBrowser bool) (string, *ingestion.Metadata, error)

// Option configures a Service.
type Option func(*Service)

// WithPasswords enables password registration and login.
func WithPasswords(p *config.PasswordConfig) Option {
	return func(s *Service) { s.passwords = p }
}

// WithBlobStore archives uploaded CV files in b.
func WithBlobStore(b blob.Store) Option {
	return func(s *Service) { s.blobs = b }
}

// WithUserLocks shares the per-user mutex with other services that update users.
func WithUserLocks(l *lock.Keyed) Option {
	return func(s *Service) { s.userLocks = l }
}

// WithFetcher replaces the job posting fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) { s.fetch = f }
}

// Service manages coaching users and their analyses.
type Service struct {
	store     *store.Store
	analyzer  *Analyzer
	passwords *config.PasswordConfig
	blobs     blob.Store
	fetch     Fetcher
	userLocks *lock.Keyed
	cvLocks   lock.Keyed
	now       func() time.Time
}

// NewService creates a Service.
func NewService(st *store.Store, analyzer *Analyzer, opts ...Option) *Service {
	s := &Service{
		store:    st,
		analyzer: analyzer,
		fetch:    ingestion.FetchJobPosting,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.userLocks == nil {
		s.userLocks = &lock.Keyed{}
	}
	return s
}

// Register creates a user. The email must be unused.
func (s *Service) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	unlock := s.userLocks.Lock("email:" + email)
	defer unlock()

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("user", "email %s is already registered", email)
	}

	var hash string
	if req.Password != "" {
		if s.passwords == nil {
			return nil, apperr.Invalid("password", "password login is not enabled")
		}
		if hash, err = s.passwords.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	level := req.ExperienceLevel
	if level == "" {
		level = types.DefaultExperienceLevel
	}
	now := s.now().UTC()
	u := &types.User{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(req.Name),
		Email:             email,
		Profession:        strings.TrimSpace(req.Profession),
		ExperienceLevel:   level,
		PasswordHash:      hash,
		CompletedSessions: []uuid.UUID{},
		SkillImprovement:  map[string]float64{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Users.Put(ctx, u.ID, u); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("user_id", u.ID.String()).Str("profession", u.Profession).Msg("user registered")
	return u, nil
}

// Login checks a user's password.
func (s *Service) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	if s.passwords == nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.findByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" || !s.passwords.VerifyPassword(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*types.User, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

// GetUser loads a user.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return s.store.Users.Get(ctx, id)
}

// UploadCV analyzes a CV and links the new analysis from the user.
func (s *Service) UploadCV(ctx context.Context, userID uuid.UUID, doc ingestion.Upload) (*types.CVAnalysis, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	text, err := doc.Content()
	if err != nil {
		return nil, err
	}

	raw, gaps, err := s.analyzer.AnalyzeCV(ctx, text, user.Profession, user.ExperienceLevel)
	if err != nil {
		return nil, err
	}

	analysis := &types.CVAnalysis{
		ID:          uuid.New(),
		UserID:      userID,
		Profession:  user.Profession,
		CVContent:   text,
		FileName:    doc.FileName,
		Gaps:        gaps,
		RawAnalysis: raw,
		AnalyzedAt:  s.now().UTC(),
	}
	if s.blobs != nil && len(doc.Data) > 0 {
		key := blob.Key("cvs", userID, analysis.ID, doc.FileName)
		if err := s.blobs.Put(ctx, key, doc.Data, doc.MimeType); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to archive CV")
		} else {
			analysis.ObjectKey = key
		}
	}
	if err := s.store.CVAnalyses.Put(ctx, analysis.ID, analysis); err != nil {
		return nil, err
	}

	err = s.updateUser(ctx, userID, func(u *types.User) {
		u.CVAnalysisID = &analysis.ID
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// GetCVAnalysis loads a stored CV analysis.
func (s *Service) GetCVAnalysis(ctx context.Context, id uuid.UUID) (*types.CVAnalysis, error) {
	return s.store.CVAnalyses.Get(ctx, id)
}

// AttachRecommendations generates learning recommendations for a CV
// analysis. Recommendations are attached once; a second request is rejected.
func (s *Service) AttachRecommendations(ctx context.Context, analysisID uuid.UUID, req *types.RecommendationRequest) (*types.CVAnalysis, error) {
	unlock := s.cvLocks.Lock(analysisID.String())
	defer unlock()

	analysis, err := s.store.CVAnalyses.Get(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if analysis.Recommendations != nil {
		return nil, apperr.Invalid("recommendations", "analysis %s already has recommendations", analysisID)
	}

	raw, recs, err := s.analyzer.Recommend(ctx, analysis.Gaps, analysis.Profession, req.Budget, req.AvailableTime)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	analysis.Recommendations = &recs
	analysis.RawRecommendations = raw
	analysis.RecommendedAt = &now
	if err := s.store.CVAnalyses.Put(ctx, analysis.ID, analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

// JobFit analyzes a job description, or the posting at a URL, against the
// user. Requirement extraction and the fit analysis run concurrently.
func (s *Service) JobFit(ctx context.Context, userID uuid.UUID, req *types.JobFitRequest) (*types.JobFitReport, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &types.JobFitReport{
		ID:        uuid.New(),
		UserID:    userID,
		SourceURL: req.JobURL,
	}

	description := strings.TrimSpace(req.JobDescription)
	if description == "" {
		if req.JobURL == "" {
			return nil, apperr.Invalid("job_description", "a job description or job URL is required")
		}
		text, meta, err := s.fetch(ctx, req.JobURL, req.UseBrowser)
		if err != nil {
			return nil, err
		}
		description = text
		report.SourcePlatform = meta.Platform
		report.PostingHash = meta.Hash
	}

	var analysis *types.CVAnalysis
	if user.CVAnalysisID != nil {
		analysis, err = s.store.CVAnalyses.Get(ctx, *user.CVAnalysisID)
		var nf *apperr.NotFoundError
		if err != nil && !errors.As(err, &nf) {
			return nil, err
		}
	}
	summary := CandidateSummary(analysis, user)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, reqs, err := s.analyzer.ExtractJobRequirements(gCtx, description)
		report.Requirements = reqs
		return err
	})
	g.Go(func() error {
		_, fit, err := s.analyzer.AnalyzeJobFit(gCtx, description, summary, user.Profession)
		report.Fit = fit
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.CreatedAt = s.now().UTC()
	if err := s.store.JobFits.Put(ctx, report.ID, report); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("user_id", userID.String()).
		Float64("fit_score", report.Fit.EligibilityAssessment.OverallFitScore.Float()).
		Msg("job fit analyzed")
	return report, nil
}

// Dashboard gathers the user's progress. The current session and latest CV
// analysis are loaded concurrently; a dangling reference is left empty.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (*types.Dashboard, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		session  *types.InterviewSession
		analysis *types.CVAnalysis
	)
	g, gCtx := errgroup.WithContext(ctx)
	if user.CurrentSessionID != nil {
		g.Go(func() error {
			var loadErr error
			session, loadErr = ignoreNotFound(s.store.Sessions.Get(gCtx, *user.CurrentSessionID))
			return loadErr
		})
	}
	if user.CVAnalysisID != nil {
		g.Go(func() error {
			var loadErr error
			analysis, loadErr = ignoreNotFound(s.store.CVAnalyses.Get(gCtx, *user.CVAnalysisID))
			return loadErr
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := types.DashboardStats{
		TotalInterviews:   user.TotalInterviews,
		CompletedSessions: len(user.CompletedSessions),
		AverageScore:      user.AverageScore,
		WeakTopics:        []string{},
	}
	if session != nil {
		stats.BestScore = session.BestScore
		stats.WeakTopics = session.TopWeakTopics(len(session.WeakTopics))
	}
	if analysis != nil {
		stats.ReadinessScore = analysis.Gaps.OverallReadinessScore.Float()
	}

	return &types.Dashboard{
		User:             user.Public(),
		CurrentSession:   session,
		LatestCVAnalysis: analysis,
		Stats:            stats,
	}, nil
}

// ListJobFits returns a user's job fit reports, newest first.
func (s *Service) ListJobFits(ctx context.Context, userID uuid.UUID) ([]*types.JobFitReport, error) {
	all, err := s.store.JobFits.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*types.JobFitReport, 0)
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Service) updateUser(ctx context.Context, id uuid.UUID, mutate func(*types.User)) error {
	unlock := s.userLocks.Lock(id.String())
	defer unlock()

	u, err := s.store.Users.Get(ctx, id)
	if err != nil {
		return err
	}
	mutate(u)
	u.UpdatedAt = s.now().UTC()
	return s.store.Users.Put(ctx, id, u)
}

func ignoreNotFound[T any](v *T, err error) (*T, error) {
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return nil, nil
	}
	return v, err
}
