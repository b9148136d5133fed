package coaching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-coach/internal/extract"
	"github.com/jonathan/hiring-coach/internal/llm"
	"github.com/jonathan/hiring-coach/internal/types"
)

func TestAnalyzer_AnalyzeCV(t *testing.T) {
	client := &MockLLMClient{GenerateJSONFunc: coachingResponder}
	a := NewAnalyzer(client)

	raw, gaps, err := a.AnalyzeCV(context.Background(), "Go developer, 4 years", "Software Engineer", "")
	require.NoError(t, err)

	assert.Equal(t, gapResponse, raw)
	assert.Equal(t, "mid-level", gaps.CurrentLevel)
	assert.Equal(t, 64.0, gaps.OverallReadinessScore.Float())
	require.Len(t, gaps.TechnicalSkillsGaps, 1)
	assert.Equal(t, "Kubernetes", gaps.TechnicalSkillsGaps[0].Skill)
	assert.NotNil(t, gaps.SoftSkillsGaps)

	prompts := client.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Go developer, 4 years")
	assert.Contains(t, prompts[0], "experience level as junior")
}

func TestAnalyzer_AnalyzeCV_Fallback(t *testing.T) {
	client := &MockLLMClient{GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
		return "Sorry, I could not read that CV.", nil
	}}

	_, gaps, err := NewAnalyzer(client).AnalyzeCV(context.Background(), "cv", "Nurse", "senior")
	require.NoError(t, err)
	assert.Equal(t, "unknown", gaps.CurrentLevel)
	assert.Equal(t, 50.0, gaps.OverallReadinessScore.Float())
	assert.Equal(t, "Sorry, I could not read that CV.", gaps.CareerStageAnalysis)
	assert.Equal(t, extract.GapAnalysisFallbackSummary, gaps.RecommendationsSummary)
}

func TestAnalyzer_UpstreamError(t *testing.T) {
	client := &MockLLMClient{GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
		return "", errors.New("boom")
	}}

	_, _, err := NewAnalyzer(client).ExtractJobRequirements(context.Background(), "posting")
	var upstream *llm.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "job-requirements", upstream.Op)
}

func TestAnalyzer_Recommend(t *testing.T) {
	client := &MockLLMClient{GenerateJSONFunc: coachingResponder}
	gaps := extract.Extract(gapResponse, extract.GapAnalysis)

	_, recs, err := NewAnalyzer(client).Recommend(context.Background(), gaps, "Software Engineer", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Platform focus.", recs.Summary)
	require.Len(t, recs.Certifications, 1)
	assert.NotNil(t, recs.LearningPaths)
	assert.NotNil(t, recs.BudgetBreakdown)

	prompt := client.Prompts()[0]
	assert.Contains(t, prompt, "AVAILABLE TIME: flexible")
	assert.Contains(t, prompt, "BUDGET: not specified")
	assert.Contains(t, prompt, "CURRENT LEVEL: mid-level")
	assert.Contains(t, prompt, "- Kubernetes (high, beginner, advanced)")
	assert.Contains(t, prompt, "- CKA (CNCF)")
	assert.Contains(t, prompt, "- Kubernetes (priority 9, 3 months)")
}

func TestAnalyzer_RecommendNoGaps(t *testing.T) {
	client := &MockLLMClient{}
	_, recs, err := NewAnalyzer(client).Recommend(context.Background(), types.GapAnalysis{}, "Chef", "500 USD", "2 hours a week")
	require.NoError(t, err)
	assert.Empty(t, recs.Courses)

	prompt := client.Prompts()[0]
	assert.Contains(t, prompt, "BUDGET: 500 USD")
	assert.Contains(t, prompt, "AVAILABLE TIME: 2 hours a week")
	assert.Contains(t, prompt, "- none identified")
}

func TestCandidateSummary(t *testing.T) {
	user := &types.User{Name: "Ana", Profession: "Data Scientist"}
	analysis := &types.CVAnalysis{
		Profession: "Data Scientist",
		Gaps:       extract.Extract(gapResponse, extract.GapAnalysis),
	}

	t.Run("from analysis", func(t *testing.T) {
		s := CandidateSummary(analysis, user)
		assert.Contains(t, s, "Current Level: mid-level")
		assert.Contains(t, s, "Overall Readiness Score: 64/100")
		assert.Contains(t, s, "Strengths: Go, SQL")
		assert.Contains(t, s, "Technical Skill Gaps: Kubernetes")
		assert.Contains(t, s, "Experience Gaps: No on-call ownership")
		assert.NotContains(t, s, "Ana")
	})

	t.Run("from profile", func(t *testing.T) {
		s := CandidateSummary(nil, user)
		assert.Contains(t, s, "Name: Ana")
		assert.Contains(t, s, "Experience Level: junior")
	})

	t.Run("no data", func(t *testing.T) {
		s := CandidateSummary(nil, nil)
		assert.Contains(t, s, "No CV or profile data provided")
	})
}
