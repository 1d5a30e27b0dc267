package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
	schemafiles "github.com/jonathan/interview-coach/schemas"
)

// DefaultRole is used when a session is started without a role.
const DefaultRole = "General"

// QuestionRequest describes the question set to build. Zero values select defaults.
type QuestionRequest struct {
	Role       string
	ResumeText string
	Difficulty types.Difficulty
	Count      int
}

// QuestionBuilder turns a request into a validated, ordered question set.
type QuestionBuilder struct {
	provider     provider
	validator    *schemas.Validator
	defaultCount int
	maxCount     int
	resumeChars  int
}

// Normalize applies defaults and rejects input that can never produce a valid set.
// Count 0 means "not given"; negative counts and counts above the maximum are rejected.
func (b *QuestionBuilder) Normalize(req QuestionRequest) (QuestionRequest, error) {
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		req.Role = DefaultRole
	}

	difficulty, err := types.ParseDifficulty(string(req.Difficulty))
	if err != nil {
		return req, &ValidationError{Field: "difficulty", Message: err.Error()}
	}
	req.Difficulty = difficulty

	switch {
	case req.Count == 0:
		req.Count = b.defaultCount
	case req.Count < 0:
		return req, &ValidationError{Field: "question_count", Message: fmt.Sprintf("must be positive, got %d", req.Count)}
	case req.Count > b.maxCount:
		return req, &ValidationError{Field: "question_count", Message: fmt.Sprintf("must be at most %d, got %d", b.maxCount, req.Count)}
	}

	req.ResumeText = truncateRunes(strings.TrimSpace(req.ResumeText), b.resumeChars)
	return req, nil
}

// Build normalizes req, asks the provider for questions and validates the reply.
// Either the full requested set is returned or an error; partial sets are never accepted.
func (b *QuestionBuilder) Build(ctx context.Context, req QuestionRequest) ([]types.Question, error) {
	req, err := b.Normalize(req)
	if err != nil {
		return nil, err
	}
	return b.build(ctx, req)
}

// build expects a request that already went through Normalize.
func (b *QuestionBuilder) build(ctx context.Context, req QuestionRequest) ([]types.Question, error) {
	prompt, err := b.prompt(req)
	if err != nil {
		return nil, err
	}

	raw, err := b.provider.generateJSON(ctx, OpGenerateQuestions, prompt)
	if err != nil {
		return nil, err
	}

	return b.parse(raw, req)
}

var questionSetShape = llm.OutputShape{
	Name: "QuestionSet",
	Fields: []llm.ShapeField{
		{
			Name:        "questions",
			Type:        `[{ "id": "q1", "text": "<question text>", "difficulty": "<difficulty>" }, ...]`,
			Description: "one entry per question, in order",
			Required:    true,
		},
	},
	Rules: []string{
		"Every id must be unique.",
		"Return exactly the number of questions requested.",
		"Return ONLY the JSON object, no markdown, no explanation.",
	},
}

func (b *QuestionBuilder) prompt(req QuestionRequest) (string, error) {
	description, err := prompts.Get("interview.json", "difficulty-"+string(req.Difficulty))
	if err != nil {
		return "", err
	}

	ids := make([]string, req.Count)
	for i := range ids {
		ids[i] = questionID(i)
	}

	task, err := prompts.Render("interview.json", "generate-questions", map[string]any{
		"Count":                 req.Count,
		"Role":                  req.Role,
		"Difficulty":            string(req.Difficulty),
		"DifficultyLabel":       strings.ToUpper(string(req.Difficulty)),
		"DifficultyDescription": description,
		"IDList":                strings.Join(ids, ", "),
		"Resume":                req.ResumeText,
	})
	if err != nil {
		return "", err
	}

	return llm.BuildStructuredPrompt(task, questionSetShape), nil
}

// parse validates the provider reply. A bare array is accepted as the questions list.
func (b *QuestionBuilder) parse(raw string, req QuestionRequest) ([]types.Question, error) {
	doc := []byte(llm.CleanJSONBlock(raw))
	if trimmed := bytes.TrimSpace(doc); len(trimmed) > 0 && trimmed[0] == '[' {
		doc = append(append([]byte(`{"questions":`), trimmed...), '}')
	}

	if err := b.validator.Validate(schemafiles.QuestionSet, doc); err != nil {
		return nil, &GenerationFormatError{Message: "reply does not match the question set schema", Cause: err}
	}

	var payload struct {
		Questions []struct {
			ID         string `json:"id"`
			Text       string `json:"text"`
			Difficulty string `json:"difficulty"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(doc, &payload); err != nil {
		return nil, &GenerationFormatError{Message: "reply could not be decoded", Cause: err}
	}

	if len(payload.Questions) != req.Count {
		return nil, &GenerationFormatError{
			Message: fmt.Sprintf("expected %d questions, got %d", req.Count, len(payload.Questions)),
		}
	}

	questions := make([]types.Question, 0, len(payload.Questions))
	seen := make(map[string]bool, len(payload.Questions))
	for i, q := range payload.Questions {
		id := strings.TrimSpace(q.ID)
		text := strings.TrimSpace(q.Text)
		if id == "" || text == "" {
			return nil, &GenerationFormatError{Message: fmt.Sprintf("question %d is missing id or text", i+1)}
		}
		if seen[id] {
			return nil, &GenerationFormatError{Message: fmt.Sprintf("duplicate question id %q", id)}
		}
		seen[id] = true

		difficulty := types.Difficulty(q.Difficulty)
		if !difficulty.Valid() {
			return nil, &GenerationFormatError{Message: fmt.Sprintf("question %q has unknown difficulty %q", id, q.Difficulty)}
		}
		if difficulty != req.Difficulty {
			return nil, &GenerationFormatError{
				Message: fmt.Sprintf("question %q has difficulty %q, requested %q", id, difficulty, req.Difficulty),
			}
		}

		questions = append(questions, types.Question{ID: id, Text: text, Difficulty: difficulty})
	}

	return questions, nil
}

func questionID(i int) string {
	return fmt.Sprintf("q%d", i+1)
}

// truncateRunes keeps at most n runes of s. n <= 0 disables truncation.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
