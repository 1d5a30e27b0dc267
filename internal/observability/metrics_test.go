package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ interview.Observer = (*Metrics)(nil)

func TestMetrics_ProviderCalls(t *testing.T) {
	m := NewMetrics()

	m.ProviderCall(interview.OpGenerateQuestions, 2*time.Second, nil)
	m.ProviderCall(interview.OpGenerateQuestions, 30*time.Second, &interview.ProviderTimeoutError{Operation: interview.OpGenerateQuestions})
	m.ProviderCall(interview.OpEvaluateAnswer, time.Second, &interview.ProviderError{Operation: interview.OpEvaluateAnswer, Cause: errors.New("500")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerCalls.WithLabelValues(interview.OpGenerateQuestions, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerCalls.WithLabelValues(interview.OpGenerateQuestions, "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerCalls.WithLabelValues(interview.OpEvaluateAnswer, "error")))
}

func TestMetrics_SessionsAndAnswers(t *testing.T) {
	m := NewMetrics()

	m.SessionStarted("Backend", types.DifficultyHard, 5)
	m.SessionStarted("Backend", types.DifficultyHard, 3)
	m.AnswerSubmitted(7, false)
	m.AnswerSubmitted(9, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues("hard")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.questionsGenerated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answersSubmitted.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answersSubmitted.WithLabelValues("true")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTP("POST", "/interview", 201, 150*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `interview_http_requests_total{method="POST",route="/interview",status="201"} 1`)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "json", "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "session_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, "abc", record["session_id"])
	assert.Equal(t, ServiceName, record["service"])
}

func TestNewLogger_Errors(t *testing.T) {
	_, err := NewLogger(io.Discard, "xml", "info")
	assert.Error(t, err)

	_, err = NewLogger(io.Discard, "text", "loud")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}
