package extract

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-coach/internal/types"
)

func TestParse_BackfillsDefaults(t *testing.T) {
	input := "Here is the scoring:\n```json\n" +
		`{"overall_score": 8, "recommendation": "hire", "detailed_scores": {"technical_skills": 9}}` +
		"\n```\nLet me know if you need more."

	rec, err := Parse(input, Scoring)
	require.NoError(t, err)

	assert.Equal(t, types.Score(8), rec.OverallScore)
	assert.Equal(t, "hire", rec.Recommendation)
	assert.Equal(t, types.Score(9), rec.DetailedScores.TechnicalSkills)
	assert.Equal(t, types.Score(5), rec.DetailedScores.Communication)
	assert.Equal(t, types.Score(5), rec.DetailedScores.ExperienceRelevance)
	assert.Equal(t, types.Score(0.5), rec.Confidence)
	assert.NotNil(t, rec.KeyStrengths)
	assert.Empty(t, rec.KeyStrengths)
	assert.Empty(t, rec.DetailedReasoning)
}

func TestParse_FallbackKeepsRawText(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no json", input: "The candidate looks fine overall."},
		{name: "malformed json", input: `Result: {"overall_score": 7, "recommendation": }`},
		{name: "truncated json", input: `{"overall_score": 7, "key_strengths": ["Go"`},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse(tt.input, Scoring)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, NameScoring, parseErr.Shape)

			assert.Equal(t, tt.input, rec.DetailedReasoning)
			assert.Equal(t, types.Score(5), rec.OverallScore)
			assert.Equal(t, "maybe", rec.Recommendation)
			assert.Equal(t, types.Score(0.5), rec.Confidence)
			assert.NotNil(t, rec.NextSteps)
		})
	}
}

func TestExtract_NeverFails(t *testing.T) {
	inputs := []string{"", "{", "}", "{{{{", `{"a":`, "```json\n```", `{"questions": 5}`, "\x00\xff{"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			rec := Extract(in, QuestionSet)
			assert.NotNil(t, rec.Questions)
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	input := `Analysis {"overall_score": "72", "weak_topics": ["SQL", {"topic": "statistics"}]}`
	first := Extract(input, PerformanceAnalysis)
	second := Extract(input, PerformanceAnalysis)
	assert.Equal(t, first, second)
}

func TestExtract_WrongFieldTypeKeepsDefault(t *testing.T) {
	input := `{"skills": "Go, Python", "overall_assessment": "Strong backend profile", "experience_years": 6}`
	rec, err := Parse(input, ResumeAnalysis)
	require.NoError(t, err)
	assert.Equal(t, "Strong backend profile", rec.OverallAssessment)
	assert.Equal(t, types.Score(6), rec.ExperienceYears)
	assert.NotNil(t, rec.Skills)
	assert.Empty(t, rec.Skills)
}

func TestExtract_Clamping(t *testing.T) {
	input := `{"overall_score": 11, "detailed_scores": {"technical_skills": -1, "communication": 10.5}}`
	rec := Extract(input, Scoring)
	assert.Equal(t, types.Score(10), rec.OverallScore)
	assert.Equal(t, types.Score(0), rec.DetailedScores.TechnicalSkills)
	assert.Equal(t, types.Score(10), rec.DetailedScores.Communication)

	perf := Extract(`{"overall_score": 140, "category_scores": {"sql": -5}}`, PerformanceAnalysis)
	assert.Equal(t, types.Score(100), perf.OverallScore)
	assert.Equal(t, types.Score(0), perf.CategoryScores["sql"])
}

func TestExtract_NonFiniteScoresKeepDefaults(t *testing.T) {
	rec := Extract(`{"overall_score": "NaN", "detailed_scores": {"technical_skills": "nan", "communication": "Inf"}}`, Scoring)
	assert.Equal(t, types.Score(types.DefaultCriterionScore), rec.OverallScore)
	assert.Equal(t, types.Score(types.DefaultCriterionScore), rec.DetailedScores.TechnicalSkills)
	assert.Equal(t, types.Score(types.DefaultCriterionScore), rec.DetailedScores.Communication)

	_, err := json.Marshal(rec)
	require.NoError(t, err)

	perf := Extract(`{"overall_score": "infinity", "category_scores": {"sql": "-Inf"}}`, PerformanceAnalysis)
	_, err = json.Marshal(perf)
	require.NoError(t, err)
	assert.False(t, math.IsInf(perf.OverallScore.Float(), 0))
	assert.Equal(t, types.Score(0), perf.CategoryScores["sql"])
}

func TestExtract_NullCollectionsBecomeEmpty(t *testing.T) {
	rec := Extract(`{"strengths": null, "weaknesses": null}`, ResumeAnalysis)
	assert.NotNil(t, rec.Strengths)
	assert.NotNil(t, rec.Weaknesses)

	lr := Extract(`{"learning_paths": null, "budget_breakdown": null}`, LearningRecommendations)
	assert.NotNil(t, lr.LearningPaths)
	assert.NotNil(t, lr.BudgetBreakdown)
}

func TestShapes_Fallbacks(t *testing.T) {
	raw := "not json at all"

	t.Run("resume analysis", func(t *testing.T) {
		rec := Extract(raw, ResumeAnalysis)
		assert.Equal(t, raw, rec.OverallAssessment)
		assert.Equal(t, types.Score(0), rec.ExperienceYears)
		assert.Empty(t, rec.Skills)
	})

	t.Run("interview evaluation", func(t *testing.T) {
		rec := Extract(raw, InterviewEvaluation)
		assert.Equal(t, raw, rec.OverallAssessment)
		assert.Equal(t, types.Score(5), rec.CommunicationScore)
		assert.Equal(t, types.Score(5), rec.LeadershipScore)
		assert.Equal(t, "", rec.RecommendationNotes)
	})

	t.Run("gap analysis", func(t *testing.T) {
		rec := Extract(raw, GapAnalysis)
		assert.Equal(t, raw, rec.CareerStageAnalysis)
		assert.Equal(t, "unknown", rec.CurrentLevel)
		assert.Equal(t, types.Score(50), rec.OverallReadinessScore)
		assert.Equal(t, GapAnalysisFallbackSummary, rec.RecommendationsSummary)
	})

	t.Run("learning recommendations", func(t *testing.T) {
		rec := Extract(raw, LearningRecommendations)
		assert.Equal(t, raw, rec.Summary)
		assert.Empty(t, rec.LearningPaths)
		assert.NotNil(t, rec.BudgetBreakdown)
	})

	t.Run("job fit", func(t *testing.T) {
		rec := Extract(raw, JobFit)
		assert.Equal(t, raw, rec.RawText)
		assert.Equal(t, types.Score(50), rec.EligibilityAssessment.OverallFitScore)
		assert.Equal(t, "medium", rec.EligibilityAssessment.HiringProbability)
	})

	t.Run("job requirements", func(t *testing.T) {
		rec := Extract(raw, JobRequirements)
		assert.Equal(t, raw, rec.RawText)
		assert.NotNil(t, rec.ExperienceRequired.Types)
	})

	t.Run("question set", func(t *testing.T) {
		rec := Extract(raw, QuestionSet)
		assert.Equal(t, raw, rec.RawText)
		assert.Empty(t, rec.Questions)
		assert.Equal(t, "", rec.Introduction)
		assert.Equal(t, "", rec.Closing)
	})

	t.Run("answer evaluation", func(t *testing.T) {
		rec := Extract(raw, AnswerEvaluation)
		assert.Equal(t, raw, rec.RawText)
	})

	t.Run("follow-up question", func(t *testing.T) {
		rec := Extract(raw, FollowUpQuestion)
		assert.Equal(t, raw, rec.RawText)
	})

	t.Run("performance analysis", func(t *testing.T) {
		rec := Extract(raw, PerformanceAnalysis)
		assert.Equal(t, raw, rec.RawAnalysis)
		assert.Equal(t, types.Score(50), rec.OverallScore)
		assert.Empty(t, rec.WeakTopics)
	})

	t.Run("practice plan", func(t *testing.T) {
		rec := Extract(raw, PracticePlan)
		assert.Equal(t, raw, rec.RawText)
		assert.Empty(t, rec.DailySchedule)
	})
}

func TestExtract_QuestionSet(t *testing.T) {
	input := `Sure! {"questions": [{"id": 1, "question": "What is a p-value?", "type": "technical", "difficulty": "medium"},
{"id": "2", "question": "Tell me about a failed project.", "type": "behavioral"}],
"interview_structure": {"total_questions": 2, "difficulty_distribution": {"medium": 1}},
"introduction": "Welcome", "closing": "Thanks"}`

	rec, err := Parse(input, QuestionSet)
	require.NoError(t, err)
	require.Len(t, rec.Questions, 2)
	assert.Equal(t, types.QuestionID("1"), rec.Questions[0].ID)
	assert.Equal(t, types.QuestionID("2"), rec.Questions[1].ID)
	assert.Equal(t, types.Score(2), rec.InterviewStructure.TotalQuestions)
	assert.Equal(t, "Welcome", rec.Introduction)
	assert.Empty(t, rec.RawText)
}

func TestDecode_MatchesParse(t *testing.T) {
	ctx := context.Background()

	complete := `{"score": 8, "detailed_feedback": "clear", "strengths": ["structure"]}`
	rec := Decode(ctx, "Evaluation:\n"+complete, AnswerEvaluation)
	assert.Equal(t, types.Score(8), rec.Score)
	assert.Equal(t, []string{"structure"}, rec.Strengths)

	// Schema-incomplete objects still decode with defaults.
	partial := Decode(ctx, `{"strengths": ["pace"]}`, AnswerEvaluation)
	assert.Equal(t, []string{"pace"}, partial.Strengths)

	raw := "no json here"
	fallback := Decode(ctx, raw, AnswerEvaluation)
	assert.Equal(t, raw, fallback.RawText)
}
