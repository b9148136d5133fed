package evaluation

import (
	"context"
	"strings"

	"github.com/jonathan/hiring-coach/internal/llm"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	Prompts             []string
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GetModel(_ llm.ModelTier) string {
	return "mock-model"
}

func (m *MockLLMClient) Close() error {
	return nil
}

const (
	resumeResponse = `Here is my analysis:
{"experience_years": 6, "skills": [{"name": "Go", "proficiency": "expert"}],
 "overall_assessment": "Strong backend engineer with distributed systems depth.",
 "strengths": ["Go expertise", "System design"], "weaknesses": ["Limited frontend work"]}`

	interviewResponse = "```json\n" + `{"communication_score": 8, "problem_solving_score": "9",
 "overall_assessment": "Clear communicator who reasons well under pressure.",
 "strengths_demonstrated": ["System design", "Clear communication"],
 "areas_for_improvement": ["Limited frontend work", "Testing depth"]}` + "\n```"

	scoringResponse = `{"overall_score": 8.4,
 "detailed_scores": {"technical_skills": 9, "communication": 8, "problem_solving": 11, "cultural_fit": -1},
 "recommendation": "HIRE", "confidence": 0.8,
 "key_strengths": ["Go expertise", "Ownership"], "main_concerns": ["Testing depth"],
 "detailed_reasoning": "Solid hire."}`
)

// stageResponder answers each evaluation prompt with a canned response.
func stageResponder(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	switch {
	case strings.Contains(prompt, "senior HR resume analyst"):
		return resumeResponse, nil
	case strings.Contains(prompt, "experienced interview assessor"):
		return interviewResponse, nil
	case strings.Contains(prompt, "hiring committee chair"):
		return scoringResponse, nil
	}
	return "unexpected prompt", nil
}
