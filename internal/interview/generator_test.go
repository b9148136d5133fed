package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-coach/internal/llm"
	"github.com/jonathan/hiring-coach/internal/types"
)

func TestNumberQuestions(t *testing.T) {
	got := numberQuestions([]types.Question{
		{ID: "2", Question: "a"},
		{ID: "", Question: "b"},
		{ID: "2", Question: "c"},
		{ID: "q4", Question: "d"},
	})

	ids := make([]types.QuestionID, 0, len(got))
	for _, q := range got {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []types.QuestionID{"2", "1", "3", "q4"}, ids)
}

func TestGenerator_GenerateQuestions(t *testing.T) {
	client := &MockLLMClient{GenerateJSONFunc: func(_ context.Context, _ string, tier llm.ModelTier) (string, error) {
		assert.Equal(t, llm.TierStandard, tier)
		return `{"questions": [{"id": 1, "question": "What is overfitting?"}, {"question": "Explain p-values."}]}`, nil
	}}

	set, err := NewGenerator(client).GenerateQuestions(context.Background(), QuestionRequest{
		Profession:      "Data Scientist",
		ExperienceLevel: "mid",
		Difficulty:      "medium",
		MinQuestions:    15,
		MaxQuestions:    20,
	})
	require.NoError(t, err)
	require.Len(t, set.Questions, 2)
	assert.Equal(t, types.QuestionID("1"), set.Questions[0].ID)
	assert.Equal(t, types.QuestionID("2"), set.Questions[1].ID)

	prompt := client.Prompts()[0]
	assert.Contains(t, prompt, "general Data Scientist topics")
	assert.Contains(t, prompt, "15")
}

func TestGenerator_MalformedResponseFallsBack(t *testing.T) {
	client := &MockLLMClient{GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
		return "I cannot answer in JSON today", nil
	}}

	eval, err := NewGenerator(client).EvaluateAnswer(context.Background(), "Engineer",
		types.Question{ID: "1", Question: "What is a goroutine?"}, "A lightweight thread.")
	require.NoError(t, err)
	assert.Equal(t, "I cannot answer in JSON today", eval.RawText)
}

func TestGenerator_WrapsCollaboratorErrors(t *testing.T) {
	client := &MockLLMClient{GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
		return "", errors.New("quota exhausted")
	}}

	_, err := NewGenerator(client).AnalyzePerformance(context.Background(), "Engineer", &types.InterviewRound{RoundNumber: 1})
	var upstream *llm.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "performance-analysis", upstream.Op)
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestGenerator_PracticePlan(t *testing.T) {
	client := &MockLLMClient{GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
		return planResponse, nil
	}}

	plan, err := NewGenerator(client).PracticePlan(context.Background(), "Data Scientist", "2 weeks", []types.WeakTopic{
		{Topic: "statistics", CurrentLevel: "beginner", RequiredLevel: "intermediate", Priority: "high"},
		{Topic: "sql"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2 weeks", plan.TotalDuration)
	require.Len(t, plan.DailySchedule, 1)

	prompt := client.Prompts()[0]
	assert.Contains(t, prompt, "- statistics (beginner to intermediate, high priority)")
	assert.Contains(t, prompt, "- sql")
}

func TestGenerator_FollowUpWindow(t *testing.T) {
	client := &MockLLMClient{GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
		return followUpResponse, nil
	}}

	previous := []types.QuestionAnswer{
		{QuestionText: "first question", Answer: "first"},
		{QuestionText: "second question", Answer: "second"},
		{QuestionText: "third question", Answer: "third"},
		{QuestionText: "fourth question", Answer: "fourth"},
	}
	fu, err := NewGenerator(client).FollowUp(context.Background(), "Engineer", "concurrency", previous)
	require.NoError(t, err)
	assert.Equal(t, "hard", fu.Difficulty)

	prompt := client.Prompts()[0]
	assert.NotContains(t, prompt, "first question")
	assert.Contains(t, prompt, "second question")
	assert.Contains(t, prompt, "fourth question")
}
