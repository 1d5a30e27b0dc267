package interview

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
	schemafiles "github.com/jonathan/interview-coach/schemas"
)

// Score bounds, inclusive.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Evaluation is the provider's verdict on one answer.
type Evaluation struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// AnswerEvaluator scores a single answer against its question.
type AnswerEvaluator struct {
	provider  provider
	validator *schemas.Validator
}

var evaluationShape = llm.OutputShape{
	Name: "Evaluation",
	Fields: []llm.ShapeField{
		{Name: "score", Type: "number", Description: "0 to 10 inclusive", Required: true},
		{Name: "feedback", Type: `"string"`, Description: "a few sentences for the candidate", Required: true},
	},
	Rules: []string{"Return ONLY the JSON object, no markdown, no explanation."},
}

// Evaluate scores answerText. Empty answers are still sent to the provider.
func (e *AnswerEvaluator) Evaluate(ctx context.Context, questionText, answerText string) (*Evaluation, error) {
	task, err := prompts.Render("interview.json", "evaluate-answer", map[string]any{
		"Question": questionText,
		"Answer":   strings.TrimSpace(answerText),
	})
	if err != nil {
		return nil, err
	}

	raw, err := e.provider.generateJSON(ctx, OpEvaluateAnswer, llm.BuildStructuredPrompt(task, evaluationShape))
	if err != nil {
		return nil, err
	}

	return e.parse(raw)
}

func (e *AnswerEvaluator) parse(raw string) (*Evaluation, error) {
	doc := []byte(llm.CleanJSONBlock(raw))

	if err := e.validator.Validate(schemafiles.Evaluation, doc); err != nil {
		return nil, &EvaluationFormatError{Message: "reply does not match the evaluation schema", Cause: err}
	}

	var payload struct {
		Score    *float64 `json:"score"`
		Feedback *string  `json:"feedback"`
	}
	if err := json.Unmarshal(doc, &payload); err != nil {
		return nil, &EvaluationFormatError{Message: "reply could not be decoded", Cause: err}
	}
	if payload.Score == nil || payload.Feedback == nil {
		return nil, &EvaluationFormatError{Message: "score and feedback are required"}
	}
	if *payload.Score < MinScore || *payload.Score > MaxScore {
		return nil, &EvaluationFormatError{Message: "score is outside [0, 10]"}
	}

	return &Evaluation{
		Score:    *payload.Score,
		Feedback: strings.TrimSpace(*payload.Feedback),
	}, nil
}
