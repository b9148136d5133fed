package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-coach/internal/config"
	"github.com/jonathan/hiring-coach/internal/llm"
	"github.com/jonathan/hiring-coach/internal/store"
	"github.com/jonathan/hiring-coach/internal/types"
)

// MockLLMClient implements llm.Client for testing.
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

// Count returns how many prompts contained marker.
func (m *MockLLMClient) Count(marker string) int {
	n := 0
	for _, p := range m.Prompts() {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

const (
	markerQuestions   = "senior interviewer across engineering"
	markerEvaluate    = "Evaluate the candidate's answer"
	markerFollowUp    = "Generate one targeted follow-up"
	markerPerformance = "performance assessment specialist"
	markerPlan        = "Create a focused practice plan"
)

func questionsResponse(n int) string {
	questions := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, map[string]any{
			"id":                  i,
			"question":            fmt.Sprintf("Question %d about model validation?", i),
			"type":                "technical",
			"difficulty":          "medium",
			"evaluation_criteria": []string{"accuracy"},
		})
	}
	data, _ := json.Marshal(map[string]any{"questions": questions, "introduction": "Welcome."})
	return string(data)
}

func performanceResponse(score float64, categories map[string]float64, weak ...string) string {
	data, _ := json.Marshal(map[string]any{
		"overall_score":     score,
		"category_scores":   categories,
		"weak_topics":       weak,
		"detailed_feedback": fmt.Sprintf("Scored %g overall.", score),
	})
	return string(data)
}

const (
	answerResponse   = `{"score": 7, "strengths": ["clear"], "detailed_feedback": "Solid answer."}`
	followUpResponse = `{"question": "How would you detect data leakage?", "type": "technical", "difficulty": "hard"}`
	planResponse     = `{"daily_schedule": [{"day": 1, "focus_topics": ["statistics"]}], "success_tips": ["Practice daily"]}`
)

// scriptedLLM answers interview prompts. Each performance analysis consumes
// the next entry of performances.
type scriptedLLM struct {
	mu           sync.Mutex
	questions    int
	performances []string
	failOn       string
}

func (s *scriptedLLM) respond(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if s.failOn != "" && strings.Contains(prompt, s.failOn) {
		return "", &llm.UpstreamError{Op: "mock", Cause: context.DeadlineExceeded}
	}
	switch {
	case strings.Contains(prompt, markerQuestions):
		return questionsResponse(s.questions), nil
	case strings.Contains(prompt, markerEvaluate):
		return answerResponse, nil
	case strings.Contains(prompt, markerFollowUp):
		return followUpResponse, nil
	case strings.Contains(prompt, markerPerformance):
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.performances) == 0 {
			return performanceResponse(50, nil), nil
		}
		next := s.performances[0]
		s.performances = s.performances[1:]
		return next, nil
	case strings.Contains(prompt, markerPlan):
		return planResponse, nil
	}
	return "{}", nil
}

type fixture struct {
	svc    *Service
	store  *store.Store
	client *MockLLMClient
	llm    *scriptedLLM
	user   *types.User
}

func newFixture(t *testing.T, performances ...string) *fixture {
	t.Helper()
	return newFixtureWithBackend(t, store.NewMemoryBackend(), performances...)
}

func newFixtureWithBackend(t *testing.T, b store.Backend, performances ...string) *fixture {
	t.Helper()
	script := &scriptedLLM{questions: 16, performances: performances}
	client := &MockLLMClient{GenerateJSONFunc: script.respond}
	st := store.New(b)

	user := &types.User{
		ID:                uuid.New(),
		Name:              "Ada Lovelace",
		Email:             "ada@example.com",
		Profession:        "Data Scientist",
		ExperienceLevel:   "mid",
		CompletedSessions: []uuid.UUID{},
		SkillImprovement:  map[string]float64{},
	}
	require.NoError(t, st.Users.Put(context.Background(), user.ID, user))

	cfg := config.InterviewConfig{CompletionThreshold: 100, MinQuestions: 15, MaxQuestions: 20, PracticeTime: "1 week"}
	return &fixture{
		svc:    NewService(st, NewGenerator(client), cfg, nil),
		store:  st,
		client: client,
		llm:    script,
		user:   user,
	}
}

func (f *fixture) reloadUser(t *testing.T) *types.User {
	t.Helper()
	u, err := f.store.Users.Get(context.Background(), f.user.ID)
	require.NoError(t, err)
	return u
}

// flakyBackend fails writes of one kind while failPuts is set.
type flakyBackend struct {
	store.Backend
	kind store.Kind

	mu       sync.Mutex
	failPuts bool
}

func (b *flakyBackend) Put(ctx context.Context, kind store.Kind, id string, data []byte) error {
	b.mu.Lock()
	fail := b.failPuts && kind == b.kind
	b.mu.Unlock()
	if fail {
		return fmt.Errorf("write %s %s: connection reset", kind, id)
	}
	return b.Backend.Put(ctx, kind, id, data)
}

func (b *flakyBackend) setFailing(fail bool) {
	b.mu.Lock()
	b.failPuts = fail
	b.mu.Unlock()
}
