package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects engine and HTTP metrics. It implements interview.Observer.
type Metrics struct {
	registry *prometheus.Registry

	// providerCalls counts provider calls by operation and result
	providerCalls *prometheus.CounterVec
	// providerDuration tracks provider latency by operation
	providerDuration *prometheus.HistogramVec
	// sessionsStarted counts started sessions by difficulty
	sessionsStarted *prometheus.CounterVec
	// questionsGenerated counts questions across all started sessions
	questionsGenerated prometheus.Counter
	// answersSubmitted counts stored answers, split into first answers and replacements
	answersSubmitted *prometheus.CounterVec
	// answerScores tracks the distribution of evaluation scores
	answerScores prometheus.Histogram
	// httpRequests counts requests by method, route and status
	httpRequests *prometheus.CounterVec
	// httpDuration tracks request latency by method and route
	httpDuration *prometheus.HistogramVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		providerCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_provider_calls_total",
			Help: "Total provider calls by operation and result",
		}, []string{"operation", "result"}),
		providerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interview_provider_call_duration_seconds",
			Help:    "Provider call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to 32s
		}, []string{"operation"}),
		sessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_sessions_started_total",
			Help: "Total interview sessions started by difficulty",
		}, []string{"difficulty"}),
		questionsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "interview_questions_generated_total",
			Help: "Total questions generated for started sessions",
		}),
		answersSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_answers_submitted_total",
			Help: "Total answers stored, by whether they replaced an earlier answer",
		}, []string{"replaced"}),
		answerScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "interview_answer_score",
			Help:    "Evaluation scores of stored answers",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ProviderCall records one provider call.
func (m *Metrics) ProviderCall(operation string, elapsed time.Duration, err error) {
	m.providerCalls.WithLabelValues(operation, providerResult(err)).Inc()
	m.providerDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SessionStarted records a persisted session.
func (m *Metrics) SessionStarted(_ string, difficulty types.Difficulty, questions int) {
	m.sessionsStarted.WithLabelValues(string(difficulty)).Inc()
	m.questionsGenerated.Add(float64(questions))
}

// AnswerSubmitted records a stored answer.
func (m *Metrics) AnswerSubmitted(score float64, replaced bool) {
	m.answersSubmitted.WithLabelValues(strconv.FormatBool(replaced)).Inc()
	m.answerScores.Observe(score)
}

// ObserveHTTP records one served request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func providerResult(err error) string {
	var timeout *interview.ProviderTimeoutError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &timeout):
		return "timeout"
	default:
		return "error"
	}
}
