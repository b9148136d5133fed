package coaching

import (
	"context"
	"strings"
	"sync"

	"github.com/jonathan/hiring-coach/internal/llm"
)

// MockLLMClient implements llm.Client for testing. It is safe for
// concurrent use.
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSON(ctx, prompt, tier)
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
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

// Prompts returns the prompts received so far.
func (m *MockLLMClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

const (
	gapResponse = `{"current_level": "mid-level", "overall_readiness_score": 64,
 "technical_skills_gaps": [{"skill": "Kubernetes", "importance": "high", "current_level": "beginner", "required_level": "advanced"}],
 "missing_certifications": [{"certification": "CKA", "provider": "CNCF"}],
 "experience_gaps": [{"gap_type": "role", "description": "No on-call ownership"}],
 "strengths": ["Go", "SQL"],
 "priority_improvements": [{"area": "Kubernetes", "priority": 9, "estimated_time": "3 months"}],
 "career_stage_analysis": "Solid mid-level engineer.", "recommendations_summary": "Focus on platform skills."}`

	recommendationResponse = `{"certifications": [{"name": "CKA", "provider": "CNCF"}],
 "courses": [{"title": "Kubernetes the Hard Way"}], "quick_wins": ["Deploy a side project"],
 "summary": "Platform focus."}`

	jobFitResponse = `{"job_analysis": {"job_title": "Platform Engineer"},
 "eligibility_assessment": {"overall_fit_score": 72, "hiring_probability": "medium"},
 "detailed_analysis": "Good fit with a Kubernetes gap."}`

	requirementsResponse = `{"job_title": "Platform Engineer", "technical_skills": ["Go", "Kubernetes"]}`
)

// coachingResponder answers each coaching prompt with a canned response.
func coachingResponder(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	switch {
	case strings.Contains(prompt, "identify gaps, weaknesses"):
		return gapResponse, nil
	case strings.Contains(prompt, "learning and development advisor"):
		return recommendationResponse, nil
	case strings.Contains(prompt, "senior talent acquisition specialist"):
		return jobFitResponse, nil
	case strings.Contains(prompt, "expert job posting parser"):
		return requirementsResponse, nil
	}
	return "unexpected prompt", nil
}
