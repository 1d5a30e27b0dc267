package interview

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/db/sqlite"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/require"
)

// scriptedClient answers GenerateJSON from a reply function and records prompts.
type scriptedClient struct {
	mu      sync.Mutex
	prompts []string
	reply   func(ctx context.Context, prompt string) (string, error)
}

func (c *scriptedClient) GenerateContent(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return c.GenerateJSON(ctx, prompt, llm.TierStandard)
}

func (c *scriptedClient) GenerateJSON(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	return c.reply(ctx, prompt)
}

func (c *scriptedClient) GetModel(llm.ModelTier) string { return "scripted" }
func (c *scriptedClient) Close() error                  { return nil }

func (c *scriptedClient) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

// questionReply builds a well-formed question set.
func questionReply(count int, difficulty types.Difficulty) string {
	items := make([]string, count)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id":"q%d","text":"Question number %d?","difficulty":"%s"}`, i+1, i+1, difficulty)
	}
	return `{"questions":[` + strings.Join(items, ",") + `]}`
}

// interviewClient generates well-formed question sets and scores every answer
// with scoreFor(answer).
func interviewClient(scoreFor func(answer string) float64) *scriptedClient {
	return &scriptedClient{reply: func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Evaluate the candidate's answer") {
			answer := prompt[strings.LastIndex(prompt, "Answer: ")+len("Answer: "):]
			answer = answer[:strings.Index(answer, "\n")]
			return fmt.Sprintf(`{"score": %g, "feedback": "feedback for %s"}`, scoreFor(answer), answer), nil
		}
		ids := prompt[strings.Index(prompt, "Use the ids ")+len("Use the ids "):]
		ids = ids[:strings.Index(ids, " in that order")]
		count := len(strings.Split(ids, ", "))
		difficulty := types.DifficultyMedium
		for _, d := range types.Difficulties {
			if strings.Contains(prompt, "DIFFICULTY LEVEL: "+strings.ToUpper(string(d))) {
				difficulty = d
			}
		}
		return questionReply(count, difficulty), nil
	}}
}

// gatedEvaluations holds evaluation calls until n of them are in flight, so
// concurrent submissions all load the session before any answer is written.
// Later evaluations pass straight through.
func gatedEvaluations(inner *scriptedClient, n int) *scriptedClient {
	var (
		mu      sync.Mutex
		arrived int
	)
	release := make(chan struct{})
	return &scriptedClient{reply: func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Evaluate the candidate's answer") {
			mu.Lock()
			arrived++
			if arrived == n {
				close(release)
			}
			mu.Unlock()
			select {
			case <-release:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return inner.reply(ctx, prompt)
	}}
}

func blockingClient() *scriptedClient {
	return &scriptedClient{reply: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
}

func failingClient(err error) *scriptedClient {
	return &scriptedClient{reply: func(context.Context, string) (string, error) {
		return "", err
	}}
}

func newTestStore(t *testing.T) *sqlite.DB {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "interview.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

// steppingClock returns strictly increasing times so ordering is deterministic.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestService(t *testing.T, client llm.Client, store Store) *Service {
	t.Helper()
	return NewService(client, store, Options{
		ProviderTimeout: 200 * time.Millisecond,
		Now:             steppingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	})
}

// brokenStore fails every write and read.
type brokenStore struct{}

var errDiskFull = errors.New("disk full")

func (brokenStore) CreateSession(context.Context, *types.InterviewSession) error { return errDiskFull }
func (brokenStore) GetSession(context.Context, uuid.UUID) (*types.InterviewSession, error) {
	return nil, errDiskFull
}
func (brokenStore) UpsertAnswer(context.Context, uuid.UUID, types.Answer) (*types.AnswerWrite, error) {
	return nil, errDiskFull
}
func (brokenStore) ListSessionsByOwner(context.Context, uuid.UUID, int) ([]types.InterviewSession, error) {
	return nil, errDiskFull
}

// failingWrites delegates to a real store but fails UpsertAnswer while failing is set.
type failingWrites struct {
	*sqlite.DB
	failing atomic.Bool
}

func (s *failingWrites) UpsertAnswer(ctx context.Context, sessionID uuid.UUID, answer types.Answer) (*types.AnswerWrite, error) {
	if s.failing.Load() {
		return nil, errDiskFull
	}
	return s.DB.UpsertAnswer(ctx, sessionID, answer)
}
