package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db/sqlite"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secret123"

// fakeModel answers question prompts with the requested ids and scores every answer 7.
type fakeModel struct{}

func (fakeModel) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return fakeModel{}.GenerateJSON(ctx, prompt, tier)
}

func (fakeModel) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if strings.Contains(prompt, "Evaluate the candidate's answer") {
		return `{"score": 7, "feedback": "Solid answer, add an example."}`, nil
	}

	ids := prompt[strings.Index(prompt, "Use the ids ")+len("Use the ids "):]
	ids = ids[:strings.Index(ids, " in that order")]
	difficulty := types.DifficultyMedium
	for _, d := range types.Difficulties {
		if strings.Contains(prompt, "DIFFICULTY LEVEL: "+strings.ToUpper(string(d))) {
			difficulty = d
		}
	}

	items := make([]string, 0)
	for i, id := range strings.Split(ids, ", ") {
		items = append(items, fmt.Sprintf(`{"id":%q,"text":"Question %d?","difficulty":%q}`, id, i+1, difficulty))
	}
	return `{"questions":[` + strings.Join(items, ",") + `]}`, nil
}

func (fakeModel) GetModel(llm.ModelTier) string { return "fake" }
func (fakeModel) Close() error                  { return nil }

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testEnv struct {
	handler http.Handler
	store   *sqlite.DB
	jwt     *JWTService
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	jwtService := NewJWTService(&config.JWTConfig{
		Secret:          "test-secret-key-for-jwt-signing-minimum-32-bytes",
		ExpirationHours: 24,
		Issuer:          config.DefaultJWTIssuer,
	})

	svc := interview.NewService(fakeModel{}, store, interview.Options{
		ProviderTimeout: time.Second,
		Logger:          logger,
		Observer:        metrics,
	})

	srv, err := New(Config{Port: 0, CORSOrigins: []string{"http://localhost:3000"}}, Dependencies{
		Users:      store,
		Interviews: svc,
		Passwords:  &config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		JWT:        jwtService,
		Health:     store,
		Metrics:    metrics,
		Logger:     logger,
	})
	require.NoError(t, err)

	return &testEnv{handler: srv.Handler(), store: store, jwt: jwtService}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its token.
func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name":             "Test User",
		"email":            email,
		"password":         testPassword,
		"confirm_password": testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{}, Dependencies{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealth_StoreDown(t *testing.T) {
	s := &Server{health: downPinger{}, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	w := httptest.NewRecorder()
	s.handleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuth_RegisterLoginProfile(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "Jane@Example.com")

	w := env.do(t, http.MethodGet, "/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[types.User](t, w)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.False(t, profile.HasResume)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "jane@example.com", "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[types.LoginResponse](t, w)
	assert.Equal(t, profile.ID, login.User.ID)

	claims, err := env.jwt.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.UserID)
}

func TestAuth_RegisterRejects(t *testing.T) {
	env := setupTestServer(t)
	env.register(t, "taken@example.com")

	tests := []struct {
		name   string
		body   any
		status int
		errMsg string
	}{
		{name: "invalid json", body: "{", status: http.StatusBadRequest, errMsg: "Invalid request body"},
		{name: "invalid email", body: map[string]string{"name": "A", "email": "nope", "password": testPassword, "confirm_password": testPassword}, status: http.StatusBadRequest, errMsg: "validation error: email - email"},
		{name: "mismatched confirmation", body: map[string]string{"name": "A", "email": "a@example.com", "password": testPassword, "confirm_password": "Secret124"}, status: http.StatusBadRequest, errMsg: "confirm_password"},
		{name: "no uppercase", body: map[string]string{"name": "A", "email": "a@example.com", "password": "secret123", "confirm_password": "secret123"}, status: http.StatusBadRequest, errMsg: "uppercase"},
		{name: "no digit", body: map[string]string{"name": "A", "email": "a@example.com", "password": "Secretive", "confirm_password": "Secretive"}, status: http.StatusBadRequest, errMsg: "number"},
		{name: "duplicate email", body: map[string]string{"name": "A", "email": "TAKEN@example.com", "password": testPassword, "confirm_password": testPassword}, status: http.StatusConflict, errMsg: "already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.errMsg)
		})
	}
}

func TestAuth_LoginRejects(t *testing.T) {
	env := setupTestServer(t)
	env.register(t, "jane@example.com")

	w := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "jane@example.com", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ghost@example.com", "password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := setupTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/auth/profile"},
		{http.MethodPost, "/resume"},
		{http.MethodPost, "/interview"},
		{http.MethodGet, "/interview/history"},
		{http.MethodGet, "/interview/statistics"},
	} {
		w := env.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}

	w := env.do(t, http.MethodGet, "/interview/history", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadResume(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "jane@example.com")

	w := env.do(t, http.MethodPost, "/resume", token, map[string]string{"text": "Jane Doe\n\n\n\n• Go   and Postgres"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[types.ResumeResponse](t, w)
	assert.Equal(t, len("Jane Doe\n\n- Go and Postgres"), resp.TextLength)

	w = env.do(t, http.MethodGet, "/auth/profile", token, nil)
	assert.True(t, decode[types.User](t, w).HasResume)
}

func TestUploadResume_PlainText(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "jane@example.com")

	req := httptest.NewRequest(http.MethodPost, "/resume", strings.NewReader("Staff engineer, payments"))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 24, decode[types.ResumeResponse](t, w).TextLength)
}

func TestUploadResume_Empty(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "jane@example.com")

	w := env.do(t, http.MethodPost, "/resume", token, map[string]string{"text": " \n\t "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "resume text is empty")
}

func TestInterview_FullFlow(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "jane@example.com")

	w := env.do(t, http.MethodPost, "/interview", token, map[string]any{"role": "Backend Engineer", "difficulty": "hard", "question_count": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	started := decode[types.StartInterviewResponse](t, w)
	require.Len(t, started.Questions, 2)
	for _, q := range started.Questions {
		assert.Equal(t, types.DifficultyHard, q.Difficulty)
	}
	base := "/interview/" + started.SessionID.String()

	w = env.do(t, http.MethodGet, base+"/result", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"created"`)

	w = env.do(t, http.MethodPost, base+"/answer", token, map[string]string{"question_id": started.Questions[0].ID, "answer": "Use a queue."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	answered := decode[types.SubmitAnswerResponse](t, w)
	assert.Equal(t, 7.0, answered.Score)
	assert.Equal(t, types.StateInProgress, answered.State)
	assert.NotEmpty(t, answered.Feedback)

	w = env.do(t, http.MethodPost, base+"/answer", token, map[string]string{"question_id": started.Questions[1].ID, "answer": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.StateCompleted, decode[types.SubmitAnswerResponse](t, w).State)

	w = env.do(t, http.MethodGet, base+"/result", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		State        types.SessionState `json:"state"`
		AverageScore float64            `json:"average_score"`
		Answers      []types.Answer     `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, types.StateCompleted, result.State)
	assert.Equal(t, 7.0, result.AverageScore)
	assert.Len(t, result.Answers, 2)

	w = env.do(t, http.MethodGet, "/interview/history?limit=5", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Count    int `json:"count"`
		Sessions []struct {
			ID    string `json:"id"`
			State string `json:"state"`
		} `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, 1, history.Count)
	assert.Equal(t, started.SessionID.String(), history.Sessions[0].ID)
	assert.Equal(t, "completed", history.Sessions[0].State)

	w = env.do(t, http.MethodGet, "/interview/statistics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[types.StatisticsSnapshot](t, w)
	assert.Equal(t, 1, stats.TotalInterviews)
	assert.Equal(t, 2, stats.TotalQuestionsAnswered)
	assert.Equal(t, 7.0, stats.AverageScore)
	assert.Equal(t, 2, stats.DifficultyBreakdown["hard"])
}

func TestInterview_EmptyBodyUsesDefaults(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "jane@example.com")

	req := httptest.NewRequest(http.MethodPost, "/interview", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	started := decode[types.StartInterviewResponse](t, w)
	assert.Len(t, started.Questions, 5)
	assert.Equal(t, types.DifficultyMedium, started.Questions[0].Difficulty)
}

func TestInterview_Errors(t *testing.T) {
	env := setupTestServer(t)
	owner := env.register(t, "owner@example.com")
	other := env.register(t, "other@example.com")

	w := env.do(t, http.MethodPost, "/interview", owner, map[string]any{"question_count": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	started := decode[types.StartInterviewResponse](t, w)
	base := "/interview/" + started.SessionID.String()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{name: "unknown difficulty", method: http.MethodPost, path: "/interview", token: owner, body: map[string]any{"difficulty": "brutal"}, status: http.StatusBadRequest},
		{name: "too many questions", method: http.MethodPost, path: "/interview", token: owner, body: map[string]any{"question_count": 25}, status: http.StatusBadRequest},
		{name: "negative count", method: http.MethodPost, path: "/interview", token: owner, body: map[string]any{"question_count": -1}, status: http.StatusBadRequest},
		{name: "malformed session id", method: http.MethodGet, path: "/interview/not-a-uuid/result", token: owner, status: http.StatusBadRequest},
		{name: "unknown session", method: http.MethodGet, path: "/interview/00000000-0000-0000-0000-000000000001/result", token: owner, status: http.StatusNotFound},
		{name: "other owner result", method: http.MethodGet, path: base + "/result", token: other, status: http.StatusNotFound},
		{name: "other owner answer", method: http.MethodPost, path: base + "/answer", token: other, body: map[string]string{"question_id": started.Questions[0].ID, "answer": "x"}, status: http.StatusNotFound},
		{name: "unknown question", method: http.MethodPost, path: base + "/answer", token: owner, body: map[string]string{"question_id": "q99", "answer": "x"}, status: http.StatusNotFound},
		{name: "missing question id", method: http.MethodPost, path: base + "/answer", token: owner, body: map[string]string{"answer": "x"}, status: http.StatusBadRequest},
		{name: "bad history limit", method: http.MethodGet, path: "/interview/history?limit=ten", token: owner, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}

	w = env.do(t, http.MethodGet, "/interview/history", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessions":[],"count":0}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "jane@example.com")

	w := env.do(t, http.MethodPost, "/interview", token, map[string]any{"question_count": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `interview_sessions_started_total{difficulty="medium"} 1`)
	assert.Contains(t, body, `interview_http_requests_total{method="POST",route="/auth/register",status="201"} 1`)
	assert.Contains(t, body, `interview_provider_calls_total{operation="generate_questions",result="ok"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/interview", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
