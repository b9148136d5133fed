// Package interview drives multi-round practice interview sessions.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/hiring-coach/internal/extract"
	"github.com/jonathan/hiring-coach/internal/llm"
	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/prompts"
	"github.com/jonathan/hiring-coach/internal/types"
)

// FollowUpWindow is how many recent answers condition a follow-up question.
const FollowUpWindow = 3

// Generator makes the collaborator calls of an interview session.
type Generator struct {
	client llm.Client
}

// NewGenerator creates a Generator over client.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// QuestionRequest describes the question set to generate.
type QuestionRequest struct {
	Profession      string
	ExperienceLevel string
	Difficulty      string
	FocusAreas      []string
	MinQuestions    int
	MaxQuestions    int
}

// GenerateQuestions produces a numbered question set.
func (g *Generator) GenerateQuestions(ctx context.Context, req QuestionRequest) (types.QuestionSet, error) {
	raw, err := g.generate(ctx, "generate-questions", llm.TierStandard, map[string]string{
		"ExperienceLevel": req.ExperienceLevel,
		"Profession":      req.Profession,
		"FocusAreas":      joinOr(req.FocusAreas, "general "+req.Profession+" topics"),
		"Difficulty":      req.Difficulty,
		"MinQuestions":    strconv.Itoa(req.MinQuestions),
		"MaxQuestions":    strconv.Itoa(req.MaxQuestions),
	})
	if err != nil {
		return types.QuestionSet{}, err
	}
	set := extract.Decode(ctx, raw, extract.QuestionSet)
	set.Questions = numberQuestions(set.Questions)
	return set, nil
}

// EvaluateAnswer scores one answer on a 0-10 scale.
func (g *Generator) EvaluateAnswer(ctx context.Context, profession string, q types.Question, answer string) (types.AnswerEvaluation, error) {
	raw, err := g.generate(ctx, "evaluate-answer", llm.TierLite, map[string]string{
		"Profession":         profession,
		"QuestionType":       firstNonEmpty(q.Type, "general"),
		"Difficulty":         firstNonEmpty(q.Difficulty, "medium"),
		"Question":           q.Question,
		"EvaluationCriteria": joinOr(q.EvaluationCriteria, "accuracy, clarity, depth, practical application"),
		"Answer":             answer,
	})
	if err != nil {
		return types.AnswerEvaluation{}, err
	}
	return extract.Decode(ctx, raw, extract.AnswerEvaluation), nil
}

// FollowUp generates one question conditioned on the most recent answers.
func (g *Generator) FollowUp(ctx context.Context, profession, focusArea string, previous []types.QuestionAnswer) (types.FollowUpQuestion, error) {
	if len(previous) > FollowUpWindow {
		previous = previous[len(previous)-FollowUpWindow:]
	}
	var sb strings.Builder
	for _, qa := range previous {
		fmt.Fprintf(&sb, "Q: %s\nA: %s\nScore: %g/10\n\n", qa.QuestionText, qa.Answer, qa.Evaluation.Score.Float())
	}

	raw, err := g.generate(ctx, "follow-up-question", llm.TierLite, map[string]string{
		"Profession":      profession,
		"FocusArea":       focusArea,
		"PreviousAnswers": firstNonEmpty(strings.TrimSpace(sb.String()), "No answers yet."),
	})
	if err != nil {
		return types.FollowUpQuestion{}, err
	}
	return extract.Decode(ctx, raw, extract.FollowUpQuestion), nil
}

// AnalyzePerformance scores a whole round on a 0-100 scale.
func (g *Generator) AnalyzePerformance(ctx context.Context, profession string, round *types.InterviewRound) (types.PerformanceAnalysis, error) {
	var sb strings.Builder
	for i, qa := range round.Answers {
		fmt.Fprintf(&sb, "Question %d (%s, %s): %s\nAnswer: %s\nAnswer score: %g/10\nFeedback: %s\n\n",
			i+1, firstNonEmpty(qa.QuestionType, "general"), firstNonEmpty(qa.Difficulty, "medium"),
			qa.QuestionText, qa.Answer, qa.Evaluation.Score.Float(), qa.Evaluation.DetailedFeedback)
	}

	raw, err := g.generate(ctx, "performance-analysis", llm.TierAdvanced, map[string]string{
		"RoundNumber":   strconv.Itoa(round.RoundNumber),
		"Profession":    profession,
		"InterviewData": firstNonEmpty(strings.TrimSpace(sb.String()), "No answers were submitted."),
	})
	if err != nil {
		return types.PerformanceAnalysis{}, err
	}
	return extract.Decode(ctx, raw, extract.PerformanceAnalysis), nil
}

// PracticePlan builds a study plan for the weak topics.
func (g *Generator) PracticePlan(ctx context.Context, profession, availableTime string, weak []types.WeakTopic) (types.PracticePlan, error) {
	lines := make([]string, 0, len(weak))
	for _, wt := range weak {
		line := "- " + wt.Topic
		var details []string
		if wt.CurrentLevel != "" && wt.RequiredLevel != "" {
			details = append(details, wt.CurrentLevel+" to "+wt.RequiredLevel)
		}
		if wt.Priority != "" {
			details = append(details, wt.Priority+" priority")
		}
		if len(details) > 0 {
			line += " (" + strings.Join(details, ", ") + ")"
		}
		lines = append(lines, line)
	}

	raw, err := g.generate(ctx, "practice-plan", llm.TierAdvanced, map[string]string{
		"Profession":    profession,
		"AvailableTime": availableTime,
		"WeakTopics":    joinLinesOr(lines, "- general interview practice"),
	})
	if err != nil {
		return types.PracticePlan{}, err
	}
	plan := extract.Decode(ctx, raw, extract.PracticePlan)
	if plan.TotalDuration == "" {
		plan.TotalDuration = availableTime
	}
	return plan, nil
}

func (g *Generator) generate(ctx context.Context, key string, tier llm.ModelTier, data map[string]string) (string, error) {
	prompt, err := prompts.Render(prompts.InterviewFile, key, data)
	if err != nil {
		return "", err
	}
	logger.Ctx(ctx).Debug().Str("prompt", key).Int("prompt_length", len(prompt)).
		Str("model", g.client.GetModel(tier)).Msg("calling collaborator")

	raw, err := g.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		var upstream *llm.UpstreamError
		if !errors.As(err, &upstream) {
			err = &llm.UpstreamError{Op: key, Cause: err}
		}
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return raw, nil
}

// numberQuestions gives every question a unique id, keeping the generated
// ids where they are present and distinct.
func numberQuestions(questions []types.Question) []types.Question {
	seen := make(map[types.QuestionID]bool, len(questions))
	for i := range questions {
		id := questions[i].ID
		if id == "" || seen[id] {
			questions[i].ID = ""
			continue
		}
		seen[id] = true
	}
	next := 1
	for i := range questions {
		if questions[i].ID != "" {
			continue
		}
		for seen[types.QuestionID(strconv.Itoa(next))] {
			next++
		}
		questions[i].ID = types.QuestionID(strconv.Itoa(next))
		seen[questions[i].ID] = true
	}
	return questions
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func joinLinesOr(lines []string, fallback string) string {
	if len(lines) == 0 {
		return fallback
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
