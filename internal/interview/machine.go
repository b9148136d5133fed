package interview

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-coach/internal/apperr"
	"github.com/jonathan/hiring-coach/internal/types"
)

// RoundOutcome is the result of sealing a round.
type RoundOutcome struct {
	Score         float64
	PreviousScore *float64
	Passed        bool
	SkillDeltas   map[string]float64
}

// Passed reports whether score meets the completion threshold.
func Passed(score, threshold float64) bool {
	return score >= threshold
}

func checkOpen(s *types.InterviewSession) error {
	if s.Status.Terminal() {
		return apperr.Invalid("session", "session %s is %s", s.ID, s.Status)
	}
	return nil
}

func checkCanStartRound(s *types.InterviewSession) error {
	if err := checkOpen(s); err != nil {
		return err
	}
	if s.TotalRounds > 0 && s.CurrentRound >= s.TotalRounds {
		return apperr.Invalid("session", "all %d rounds have been started", s.TotalRounds)
	}
	if n := len(s.Rounds); n > 0 && s.Rounds[n-1].Status == types.StatusInProgress {
		return apperr.Invalid("round", "round %d is still in progress", s.Rounds[n-1].RoundNumber)
	}
	return nil
}

// findOpenRound returns the round that can take answers or be completed.
func findOpenRound(s *types.InterviewSession, roundID uuid.UUID) (*types.InterviewRound, error) {
	if err := checkOpen(s); err != nil {
		return nil, err
	}
	r, ok := s.FindRound(roundID)
	if !ok {
		return nil, apperr.NotFound("round", roundID)
	}
	switch r.Status {
	case types.StatusInProgress:
		return r, nil
	case types.StatusCompleted:
		return nil, apperr.Invalid("round", "round %d is already completed", r.RoundNumber)
	default:
		return nil, apperr.Invalid("round", "round %d is %s", r.RoundNumber, r.Status)
	}
}

func startRound(s *types.InterviewSession, difficulty string, focusAreas []string, questions []types.Question, now time.Time) *types.InterviewRound {
	s.CurrentRound++
	s.Status = types.StatusInProgress
	s.UpdatedAt = now
	s.Rounds = append(s.Rounds, types.InterviewRound{
		ID:          uuid.New(),
		RoundNumber: s.CurrentRound,
		Difficulty:  difficulty,
		FocusAreas:  focusAreas,
		Questions:   questions,
		Answers:     []types.QuestionAnswer{},
		Status:      types.StatusInProgress,
		StartedAt:   &now,
	})
	return &s.Rounds[len(s.Rounds)-1]
}

// recordAnswer appends qa. Answering a question again adds another entry.
func recordAnswer(s *types.InterviewSession, r *types.InterviewRound, qa types.QuestionAnswer) {
	r.Answers = append(r.Answers, qa)
	s.UpdatedAt = qa.AnsweredAt
}

// completeRound seals r with analysis. A nil plan is only valid when the
// round passes.
func completeRound(s *types.InterviewSession, r *types.InterviewRound, analysis types.PerformanceAnalysis,
	plan *types.PracticePlan, threshold float64, now time.Time,
) RoundOutcome {
	out := RoundOutcome{Score: types.Clamp(analysis.OverallScore.Float(), 0, 100)}
	var prevAnalysis *types.PerformanceAnalysis
	if prev, ok := s.LastCompletedRound(); ok {
		if prev.Score != nil {
			p := *prev.Score
			out.PreviousScore = &p
		}
		prevAnalysis = prev.Analysis
	}
	out.SkillDeltas = skillDeltas(prevAnalysis, &analysis)
	out.Passed = Passed(out.Score, threshold)

	score := out.Score
	r.Score = &score
	r.Feedback = analysis.DetailedFeedback
	r.Analysis = &analysis
	r.Status = types.StatusCompleted
	r.CompletedAt = &now

	overall := out.Score
	s.OverallScore = &overall
	if out.Score > s.BestScore {
		s.BestScore = out.Score
	}
	rate := 0.0
	if out.PreviousScore != nil {
		rate = out.Score - *out.PreviousScore
	}
	s.ImprovementRate = &rate

	s.WeakTopics = make([]types.WeakTopic, 0, len(analysis.WeakTopics))
	for _, wt := range analysis.WeakTopics {
		if wt.Topic != "" {
			s.WeakTopics = append(s.WeakTopics, wt)
		}
	}

	if out.Passed {
		s.Status = types.StatusCompleted
		s.IsReadyForNextRound = true
		s.PracticePlan = nil
		s.CompletedAt = &now
	} else {
		s.PracticePlan = plan
		s.IsReadyForNextRound = false
	}
	s.UpdatedAt = now
	return out
}

func cancelSession(s *types.InterviewSession, now time.Time) error {
	if err := checkOpen(s); err != nil {
		return err
	}
	s.Status = types.StatusCancelled
	for i := range s.Rounds {
		if s.Rounds[i].Status == types.StatusInProgress || s.Rounds[i].Status == types.StatusPending {
			s.Rounds[i].Status = types.StatusCancelled
		}
	}
	s.UpdatedAt = now
	return nil
}

// skillDeltas returns per-category score changes against the previous
// analysis. Categories seen for the first time change by zero.
func skillDeltas(prev, cur *types.PerformanceAnalysis) map[string]float64 {
	out := make(map[string]float64, len(cur.CategoryScores))
	for cat, score := range cur.CategoryScores {
		delta := 0.0
		if prev != nil {
			if before, ok := prev.CategoryScores[cat]; ok {
				delta = score.Float() - before.Float()
			}
		}
		out[cat] = delta
	}
	return out
}
