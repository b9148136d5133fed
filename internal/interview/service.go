package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-coach/internal/apperr"
	"github.com/jonathan/hiring-coach/internal/config"
	"github.com/jonathan/hiring-coach/internal/llm"
	"github.com/jonathan/hiring-coach/internal/lock"
	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/store"
	"github.com/jonathan/hiring-coach/internal/types"
)

const (
	// DefaultDifficulty is used when a round is started without one.
	DefaultDifficulty = "medium"
	// DefaultPracticeTime is the study window offered after a failed round.
	DefaultPracticeTime = "1 week"
	// weakTopicFocus is how many weak topics seed an unfocused round.
	weakTopicFocus = 3
)

// ErrNoQuestions is returned when question generation yields nothing usable.
var ErrNoQuestions = errors.New("no interview questions were generated")

// Service runs practice interview sessions. Mutations of one session are
// serialized; user aggregates are updated under the shared user lock.
type Service struct {
	store        *store.Store
	gen          *Generator
	cfg          config.InterviewConfig
	sessionLocks lock.Keyed
	userLocks    *lock.Keyed
	now          func() time.Time
}

// NewService creates a Service. userLocks may be shared with other services
// that update users; nil allocates a private one.
func NewService(st *store.Store, gen *Generator, cfg config.InterviewConfig, userLocks *lock.Keyed) *Service {
	if cfg.CompletionThreshold <= 0 {
		cfg.CompletionThreshold = 100
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = 20
	}
	if cfg.MinQuestions <= 0 || cfg.MinQuestions > cfg.MaxQuestions {
		cfg.MinQuestions = min(15, cfg.MaxQuestions)
	}
	if cfg.PracticeTime == "" {
		cfg.PracticeTime = DefaultPracticeTime
	}
	if userLocks == nil {
		userLocks = &lock.Keyed{}
	}
	return &Service{
		store:     st,
		gen:       gen,
		cfg:       cfg,
		userLocks: userLocks,
		now:       time.Now,
	}
}

// StartSession opens a pending session for a user and makes it current.
func (s *Service) StartSession(ctx context.Context, userID uuid.UUID, profession string) (*types.InterviewSession, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	profession = strings.TrimSpace(profession)
	if profession == "" {
		profession = user.Profession
	}
	if profession == "" {
		return nil, apperr.Invalid("profession", "profession is required")
	}

	now := s.now().UTC()
	session := &types.InterviewSession{
		ID:                  uuid.New(),
		UserID:              userID,
		Profession:          profession,
		ExperienceLevel:     firstNonEmpty(user.ExperienceLevel, types.DefaultExperienceLevel),
		Status:              types.StatusPending,
		TotalRounds:         s.cfg.TotalRounds,
		Rounds:              []types.InterviewRound{},
		WeakTopics:          []types.WeakTopic{},
		IsReadyForNextRound: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.Sessions.Put(ctx, session.ID, session); err != nil {
		return nil, err
	}

	err = s.updateUser(ctx, userID, func(u *types.User) {
		u.CurrentSessionID = &session.ID
		u.TotalInterviews++
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("session_id", session.ID.String()).Str("user_id", userID.String()).
		Str("profession", profession).Msg("interview session started")
	return session, nil
}

// GetSession loads a session.
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*types.InterviewSession, error) {
	return s.store.Sessions.Get(ctx, id)
}

// StartRound generates questions and appends a new in-progress round. Without
// focus areas the round targets the session's top weak topics.
func (s *Service) StartRound(ctx context.Context, sessionID uuid.UUID, difficulty string, focusAreas []string) (*types.InterviewRound, error) {
	unlock := s.sessionLocks.Lock(sessionID.String())
	defer unlock()

	session, err := s.store.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkCanStartRound(session); err != nil {
		return nil, err
	}

	if difficulty == "" {
		difficulty = DefaultDifficulty
	}
	if len(focusAreas) == 0 {
		focusAreas = session.TopWeakTopics(weakTopicFocus)
	}
	if focusAreas == nil {
		focusAreas = []string{}
	}

	set, err := s.gen.GenerateQuestions(ctx, QuestionRequest{
		Profession:      session.Profession,
		ExperienceLevel: session.ExperienceLevel,
		Difficulty:      difficulty,
		FocusAreas:      focusAreas,
		MinQuestions:    s.cfg.MinQuestions,
		MaxQuestions:    s.cfg.MaxQuestions,
	})
	if err != nil {
		return nil, err
	}

	log := logger.Ctx(ctx)
	questions := set.Questions
	switch n := len(questions); {
	case n == 0:
		return nil, &llm.UpstreamError{Op: "generate-questions", Cause: ErrNoQuestions}
	case n > s.cfg.MaxQuestions:
		log.Info().Int("generated", n).Int("max", s.cfg.MaxQuestions).Msg("truncating generated questions")
		questions = questions[:s.cfg.MaxQuestions]
	case n < s.cfg.MinQuestions:
		log.Warn().Int("generated", n).Int("min", s.cfg.MinQuestions).Msg("fewer questions generated than requested")
	}

	round := startRound(session, difficulty, focusAreas, questions, s.now().UTC())
	if err := s.store.Sessions.Put(ctx, session.ID, session); err != nil {
		return nil, err
	}

	log.Info().Str("session_id", session.ID.String()).Int("round", round.RoundNumber).
		Int("questions", len(round.Questions)).Msg("interview round started")
	return round, nil
}

// SubmitAnswer evaluates and records an answer to a question of an
// in-progress round.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, roundID uuid.UUID, questionID types.QuestionID, answer string) (*types.QuestionAnswer, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, apperr.Invalid("answer", "answer is required")
	}

	unlock := s.sessionLocks.Lock(sessionID.String())
	defer unlock()

	session, err := s.store.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	round, err := findOpenRound(session, roundID)
	if err != nil {
		return nil, err
	}
	question, ok := round.FindQuestion(questionID)
	if !ok {
		return nil, &apperr.NotFoundError{Kind: "question", ID: string(questionID)}
	}

	eval, err := s.gen.EvaluateAnswer(ctx, session.Profession, *question, answer)
	if err != nil {
		return nil, err
	}

	qa := types.QuestionAnswer{
		QuestionID:   question.ID,
		QuestionText: question.Question,
		QuestionType: question.Type,
		Difficulty:   question.Difficulty,
		Answer:       answer,
		Evaluation:   eval,
		AnsweredAt:   s.now().UTC(),
	}
	recordAnswer(session, round, qa)
	if err := s.store.Sessions.Put(ctx, session.ID, session); err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Debug().Str("session_id", session.ID.String()).Str("question_id", string(qa.QuestionID)).
		Float64("score", eval.Score.Float()).Msg("answer recorded")
	return &qa, nil
}

// CompleteRound analyzes a round and seals it. A round scoring at or above
// the completion threshold completes the session; otherwise a practice plan
// is attached and the user must practice before the next round.
func (s *Service) CompleteRound(ctx context.Context, sessionID, roundID uuid.UUID) (*types.InterviewSession, error) {
	unlock := s.sessionLocks.Lock(sessionID.String())
	defer unlock()

	session, err := s.store.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	round, err := findOpenRound(session, roundID)
	if err != nil {
		return nil, err
	}

	analysis, err := s.gen.AnalyzePerformance(ctx, session.Profession, round)
	if err != nil {
		return nil, err
	}

	var plan *types.PracticePlan
	if !Passed(types.Clamp(analysis.OverallScore.Float(), 0, 100), s.cfg.CompletionThreshold) {
		p, err := s.gen.PracticePlan(ctx, session.Profession, s.cfg.PracticeTime, namedTopics(analysis.WeakTopics))
		if err != nil {
			return nil, err
		}
		plan = &p
	}

	// The stored copy is still unsealed; it is restored if the user update fails
	// so the round can be completed again.
	before, err := s.store.Sessions.Get(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	out := completeRound(session, round, analysis, plan, s.cfg.CompletionThreshold, s.now().UTC())
	if err := s.store.Sessions.Put(ctx, session.ID, session); err != nil {
		return nil, err
	}

	err = s.updateUser(ctx, session.UserID, func(u *types.User) {
		u.RecordRoundScore(out.Score)
		if u.SkillImprovement == nil {
			u.SkillImprovement = map[string]float64{}
		}
		for cat, delta := range out.SkillDeltas {
			u.SkillImprovement[cat] = delta
		}
		if out.Passed {
			u.CompletedSessions = append(u.CompletedSessions, session.ID)
		}
	})
	if err != nil {
		if rerr := s.store.Sessions.Put(ctx, before.ID, before); rerr != nil {
			logger.Ctx(ctx).Error().Err(rerr).Str("session_id", session.ID.String()).
				Msg("failed to restore session after user update failure")
		}
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("session_id", session.ID.String()).Int("round", round.RoundNumber).
		Float64("score", out.Score).Bool("passed", out.Passed).Msg("interview round completed")
	return session, nil
}

// Cancel ends a session without completing it.
func (s *Service) Cancel(ctx context.Context, sessionID uuid.UUID) (*types.InterviewSession, error) {
	unlock := s.sessionLocks.Lock(sessionID.String())
	defer unlock()

	session, err := s.store.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := cancelSession(session, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.store.Sessions.Put(ctx, session.ID, session); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("session_id", session.ID.String()).Msg("interview session cancelled")
	return session, nil
}

// AdaptiveFollowUp generates a question conditioned on the last answers.
func (s *Service) AdaptiveFollowUp(ctx context.Context, previous []types.QuestionAnswer, focusArea, profession string) (types.FollowUpQuestion, error) {
	if strings.TrimSpace(focusArea) == "" {
		return types.FollowUpQuestion{}, apperr.Invalid("focus_area", "focus area is required")
	}
	return s.gen.FollowUp(ctx, profession, focusArea, previous)
}

// SessionFollowUp generates a follow-up from the answers of a session round.
// A nil roundID selects the latest round.
func (s *Service) SessionFollowUp(ctx context.Context, sessionID uuid.UUID, roundID *uuid.UUID, focusArea string) (types.FollowUpQuestion, error) {
	session, err := s.store.Sessions.Get(ctx, sessionID)
	if err != nil {
		return types.FollowUpQuestion{}, err
	}

	var round *types.InterviewRound
	if roundID != nil {
		r, ok := session.FindRound(*roundID)
		if !ok {
			return types.FollowUpQuestion{}, apperr.NotFound("round", *roundID)
		}
		round = r
	} else if n := len(session.Rounds); n > 0 {
		round = &session.Rounds[n-1]
	}

	var previous []types.QuestionAnswer
	if round != nil {
		previous = round.Answers
	}
	return s.AdaptiveFollowUp(ctx, previous, focusArea, session.Profession)
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

func namedTopics(topics []types.WeakTopic) []types.WeakTopic {
	out := make([]types.WeakTopic, 0, len(topics))
	for _, wt := range topics {
		if wt.Topic != "" {
			out = append(out, wt)
		}
	}
	return out
}
