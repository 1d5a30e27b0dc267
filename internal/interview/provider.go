package interview

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/types"
)

// Provider operation names, used in errors and metrics.
const (
	OpGenerateQuestions = "generate_questions"
	OpEvaluateAnswer    = "evaluate_answer"
)

// Observer receives engine events. Metrics collectors implement it.
// ProviderCall receives the classified error (*ProviderTimeoutError or *ProviderError).
type Observer interface {
	ProviderCall(operation string, elapsed time.Duration, err error)
	SessionStarted(role string, difficulty types.Difficulty, questions int)
	AnswerSubmitted(score float64, replaced bool)
}

type nopObserver struct{}

func (nopObserver) ProviderCall(string, time.Duration, error)     {}
func (nopObserver) SessionStarted(string, types.Difficulty, int) {}
func (nopObserver) AnswerSubmitted(float64, bool)                {}

// provider bounds every model call with a timeout and classifies failures.
type provider struct {
	client   llm.Client
	tier     llm.ModelTier
	timeout  time.Duration
	observer Observer
}

func (p provider) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.client.GenerateJSON(callCtx, prompt, p.tier)
	if err != nil {
		err = p.classify(callCtx, operation, err)
	}
	p.observer.ProviderCall(operation, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return text, nil
}

// classify maps a client failure to ProviderTimeoutError or ProviderError.
// Some SDKs do not wrap the context error, so the call context is checked too.
func (p provider) classify(callCtx context.Context, operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &ProviderTimeoutError{Operation: operation, Timeout: p.timeout, Cause: err}
	}
	return &ProviderError{Operation: operation, Cause: err}
}
