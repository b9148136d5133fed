package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/hiring-coach/internal/coaching"
	"github.com/jonathan/hiring-coach/internal/config"
	"github.com/jonathan/hiring-coach/internal/evaluation"
	"github.com/jonathan/hiring-coach/internal/interview"
	"github.com/jonathan/hiring-coach/internal/llm"
	"github.com/jonathan/hiring-coach/internal/lock"
	"github.com/jonathan/hiring-coach/internal/server/ratelimit"
	"github.com/jonathan/hiring-coach/internal/store"
	"github.com/jonathan/hiring-coach/internal/types"
)

// mockLLM answers every prompt the services send with a canned response.
type mockLLM struct {
	mu      sync.Mutex
	prompts []string
}

func (m *mockLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSON(ctx, prompt, tier)
}

func (m *mockLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	switch {
	case strings.Contains(prompt, "senior HR resume analyst"):
		return `{"experience_years": 6, "skills": [{"name": "Go"}], "overall_assessment": "Strong.",
 "strengths": ["Go"], "weaknesses": ["Frontend"]}`, nil
	case strings.Contains(prompt, "experienced interview assessor"):
		return `{"communication_score": 8, "problem_solving_score": 9, "overall_assessment": "Clear.",
 "strengths_demonstrated": ["Design"], "areas_for_improvement": ["Testing"]}`, nil
	case strings.Contains(prompt, "hiring committee chair"):
		return `{"overall_score": 8.4, "detailed_scores": {"technical_skills": 9, "communication": 8,
 "problem_solving": 9, "cultural_fit": 8}, "recommendation": "HIRE", "confidence": 0.8,
 "key_strengths": ["Go"], "main_concerns": ["Testing"], "detailed_reasoning": "Solid hire."}`, nil
	case strings.Contains(prompt, "identify gaps, weaknesses"):
		return `{"current_level": "mid-level", "overall_readiness_score": 64, "strengths": ["Go"],
 "technical_skills_gaps": [{"skill": "Kubernetes", "importance": "high"}]}`, nil
	case strings.Contains(prompt, "senior interviewer across engineering"):
		return `{"questions": [{"id": 1, "question": "Explain goroutines?"}, {"id": 2, "question": "Explain channels?"},
 {"id": 3, "question": "Explain contexts?"}], "introduction": "Welcome."}`, nil
	case strings.Contains(prompt, "Evaluate the candidate's answer"):
		return `{"score": 8, "detailed_feedback": "Good."}`, nil
	case strings.Contains(prompt, "Generate one targeted follow-up"):
		return `{"question": "How do you cancel a goroutine?", "type": "technical"}`, nil
	case strings.Contains(prompt, "performance assessment specialist"):
		return `{"overall_score": 92, "category_scores": {"concurrency": 92}, "weak_topics": []}`, nil
	case strings.Contains(prompt, "Create a focused practice plan"):
		return `{"success_tips": ["Practice daily"]}`, nil
	}
	return "{}", nil
}

func (m *mockLLM) GetModel(_ llm.ModelTier) string { return "mock-model" }

func (m *mockLLM) Close() error { return nil }

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

type testEnv struct {
	handler http.Handler
	llm     *mockLLM
	store   *store.Store
}

func newTestEnv(t *testing.T, withAuth bool) *testEnv {
	t.Helper()

	st := store.NewMemory()
	client := &mockLLM{}
	userLocks := &lock.Keyed{}

	svc := Services{
		Evaluation: evaluation.NewService(st, evaluation.NewPipeline(client)),
		Coaching: coaching.NewService(st, coaching.NewAnalyzer(client),
			coaching.WithPasswords(&config.PasswordConfig{BcryptCost: bcrypt.MinCost}),
			coaching.WithUserLocks(userLocks)),
		Interview: interview.NewService(st, interview.NewGenerator(client), config.InterviewConfig{
			CompletionThreshold: 80,
			MinQuestions:        3,
			MaxQuestions:        5,
			TotalRounds:         3,
		}, userLocks),
	}

	cfg := Config{RateLimit: &ratelimit.Config{Enabled: false}}
	if withAuth {
		cfg.JWT = NewJWTService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 1, Issuer: "hiring-coach"})
	}
	return &testEnv{handler: New(svc, cfg).Handler(), llm: client, store: st}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) register(t *testing.T, email string) types.LoginResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/users", "", types.CreateUserRequest{
		Name:       "Jane Doe",
		Email:      email,
		Password:   "correct-horse",
		Profession: "Backend Engineer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[types.LoginResponse](t, rec)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodOptions, "/candidates", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCandidateEvaluationFlow(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/candidates", "", types.CreateCandidateRequest{
		Name:            "John Roe",
		Email:           "john@example.com",
		PositionApplied: "Backend Engineer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	candidate := decode[types.Candidate](t, rec)
	base := "/candidates/" + candidate.ID.String()

	rec = env.do(t, http.MethodPost, base+"/evaluate", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "evaluation needs both documents")

	rec = env.do(t, http.MethodPost, base+"/resume", "", types.TextUploadRequest{Content: "Six years of Go."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, base+"/interview", "", types.TextUploadRequest{
		Content:     "Q: Tell me about Go. A: I have used it for six years.",
		Interviewer: "Alex",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, base+"/evaluate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[types.EvaluationResult](t, rec)
	assert.Equal(t, candidate.ID, result.CandidateID)
	assert.NotEmpty(t, result.Recommendation)

	rec = env.do(t, http.MethodGet, base+"/evaluation", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, result.ID, decode[types.EvaluationResult](t, rec).ID)

	rec = env.do(t, http.MethodGet, "/evaluations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), candidate.ID.String())
}

func TestAttachResume_Multipart(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/candidates", "", types.CreateCandidateRequest{
		Name: "John Roe", Email: "john@example.com", PositionApplied: "Backend Engineer",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	candidate := decode[types.Candidate](t, rec)

	upload := func(fileName string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/candidates/"+candidate.ID.String()+"/resume", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, upload("cv.md", []byte("# Jane\nGo engineer")).Code)
	assert.Equal(t, http.StatusUnsupportedMediaType, upload("cv.png", []byte{0x89, 'P', 'N', 'G'}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, upload("cv.pdf", []byte("not a pdf")).Code)
}

func TestEvaluateStream(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/candidates", "", types.CreateCandidateRequest{
		Name: "John Roe", Email: "john@example.com", PositionApplied: "Backend Engineer",
	})
	candidate := decode[types.Candidate](t, rec)
	base := "/candidates/" + candidate.ID.String()
	env.do(t, http.MethodPost, base+"/resume", "", types.TextUploadRequest{Content: "Six years of Go."})
	env.do(t, http.MethodPost, base+"/interview", "", types.TextUploadRequest{Content: "Q: Go? A: Yes."})

	rec = env.do(t, http.MethodPost, base+"/evaluate/stream", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: step")
	assert.Contains(t, body, "event: complete")
	assert.NotContains(t, body, "event: error")
}

func TestCandidateErrors(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"invalid id", http.MethodGet, "/candidates/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown candidate", http.MethodGet, "/candidates/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown evaluation", http.MethodGet, "/candidates/" + uuid.NewString() + "/evaluation", nil, http.StatusNotFound},
		{"stream unknown candidate", http.MethodPost, "/candidates/" + uuid.NewString() + "/evaluate/stream", nil, http.StatusNotFound},
		{"missing fields", http.MethodPost, "/candidates", map[string]string{"name": "x"}, http.StatusBadRequest},
		{"async without queue", http.MethodPost, "/candidates/" + uuid.NewString() + "/evaluate?async=true", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, "", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, true)

	registered := env.register(t, "jane@example.com")
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "jane@example.com", registered.User.Email)
	assert.True(t, registered.User.PasswordSet)
	assert.NotContains(t, env.do(t, http.MethodPost, "/auth/login", "", types.LoginRequest{
		Email: "jane@example.com", Password: "correct-horse",
	}).Body.String(), "password_hash")

	rec := env.do(t, http.MethodPost, "/users", "", types.CreateUserRequest{
		Name: "Jane", Email: "JANE@example.com", Password: "another-pass", Profession: "Data Scientist",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", "", types.LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", "", types.LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[types.LoginResponse](t, rec)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, registered.User.ID, login.User.ID)
}

func TestProtectedRoutes(t *testing.T) {
	env := newTestEnv(t, true)
	jane := env.register(t, "jane@example.com")
	john := env.register(t, "john@example.com")
	janePath := "/users/" + jane.User.ID.String()

	rec := env.do(t, http.MethodGet, janePath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = env.do(t, http.MethodGet, janePath, "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, janePath, john.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, janePath, jane.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, jane.User.ID, decode[types.PublicUser](t, rec).ID)

	rec = env.do(t, http.MethodPost, janePath+"/sessions", jane.Token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	session := decode[types.InterviewSession](t, rec)

	rec = env.do(t, http.MethodGet, "/sessions/"+session.ID.String(), john.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodGet, "/sessions/"+session.ID.String(), jane.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCoachingRoutes(t *testing.T) {
	env := newTestEnv(t, false)
	jane := env.register(t, "jane@example.com")
	userPath := "/users/" + jane.User.ID.String()
	assert.Empty(t, jane.Token, "no token without auth")

	rec := env.do(t, http.MethodPost, userPath+"/cv", "", types.TextUploadRequest{
		Content: "Backend engineer, five years of Go and SQL.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	analysis := decode[types.CVAnalysis](t, rec)
	assert.Equal(t, jane.User.ID, analysis.UserID)

	rec = env.do(t, http.MethodGet, "/cv-analyses/"+analysis.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analysis.ID, decode[types.CVAnalysis](t, rec).ID)

	rec = env.do(t, http.MethodGet, "/cv-analyses/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, userPath+"/job-fit", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, userPath+"/job-fits", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["count"])

	rec = env.do(t, http.MethodGet, "/users/"+uuid.NewString()+"/job-fits", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, userPath+"/dashboard", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestInterviewRoutes(t *testing.T) {
	env := newTestEnv(t, false)
	jane := env.register(t, "jane@example.com")

	rec := env.do(t, http.MethodPost, "/users/"+jane.User.ID.String()+"/sessions", "", types.StartSessionRequest{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decode[types.InterviewSession](t, rec)
	assert.Equal(t, "Backend Engineer", session.Profession)
	sessionPath := "/sessions/" + session.ID.String()

	rec = env.do(t, http.MethodPost, sessionPath+"/rounds", "", types.StartRoundRequest{Difficulty: "impossible"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, sessionPath+"/rounds", "", types.StartRoundRequest{Difficulty: "medium"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	round := decode[types.InterviewRound](t, rec)
	require.Len(t, round.Questions, 3)
	roundPath := fmt.Sprintf("%s/rounds/%s", sessionPath, round.ID)

	rec = env.do(t, http.MethodPost, sessionPath+"/rounds", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "round already in progress")

	rec = env.do(t, http.MethodPost, roundPath+"/answers", "", types.SubmitAnswerRequest{
		QuestionID: "99", Answer: "An answer.",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, q := range round.Questions {
		rec = env.do(t, http.MethodPost, roundPath+"/answers", "", types.SubmitAnswerRequest{
			QuestionID: q.ID, Answer: "Goroutines are lightweight threads.",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, sessionPath+"/follow-up", "", types.FollowUpRequest{FocusArea: "concurrency"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "cancel a goroutine")

	rec = env.do(t, http.MethodPost, sessionPath+"/follow-up", "", types.FollowUpRequest{RoundID: "nope", FocusArea: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, roundPath+"/complete", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decode[types.InterviewSession](t, rec)
	assert.Equal(t, types.StatusCompleted, completed.Status)
	assert.True(t, completed.IsReadyForNextRound)

	rec = env.do(t, http.MethodPost, roundPath+"/complete", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, sessionPath+"/cancel", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "completed sessions cannot be cancelled")

	rec = env.do(t, http.MethodGet, "/sessions/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	st := store.NewMemory()
	client := &mockLLM{}
	svc := Services{
		Evaluation: evaluation.NewService(st, evaluation.NewPipeline(client)),
		Coaching:   coaching.NewService(st, coaching.NewAnalyzer(client)),
		Interview:  interview.NewService(st, interview.NewGenerator(client), config.InterviewConfig{}, nil),
	}
	cfg := &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Minute,
	}
	handler := New(svc, Config{RateLimit: cfg}).Handler()

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, get().Code)
	assert.Equal(t, http.StatusOK, get().Code)
	rec := get()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}
