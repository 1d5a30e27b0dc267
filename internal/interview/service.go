// Package interview implements the interview session and scoring engine:
// building question sets, evaluating answers, persisting sessions and
// aggregating statistics across an owner's sessions.
package interview

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
	schemafiles "github.com/jonathan/interview-coach/schemas"
)

// Options tunes the engine. Zero fields take the values from DefaultOptions.
type Options struct {
	ProviderTimeout      time.Duration
	DefaultQuestionCount int
	MaxQuestionCount     int
	MaxResumeChars       int
	DefaultHistoryLimit  int
	MaxHistoryLimit      int
	GenerationTier       llm.ModelTier
	EvaluationTier       llm.ModelTier

	Logger   *slog.Logger
	Observer Observer
	// Validator defaults to one reading the embedded schema files.
	Validator *schemas.Validator
	// Now defaults to time.Now; tests override it to control ordering.
	Now func() time.Time
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		ProviderTimeout:      30 * time.Second,
		DefaultQuestionCount: 5,
		MaxQuestionCount:     20,
		MaxResumeChars:       3000,
		DefaultHistoryLimit:  50,
		MaxHistoryLimit:      100,
		GenerationTier:       llm.TierStandard,
		EvaluationTier:       llm.TierStandard,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ProviderTimeout <= 0 {
		o.ProviderTimeout = d.ProviderTimeout
	}
	if o.DefaultQuestionCount <= 0 {
		o.DefaultQuestionCount = d.DefaultQuestionCount
	}
	if o.MaxQuestionCount <= 0 {
		o.MaxQuestionCount = d.MaxQuestionCount
	}
	if o.MaxResumeChars <= 0 {
		o.MaxResumeChars = d.MaxResumeChars
	}
	if o.DefaultHistoryLimit <= 0 {
		o.DefaultHistoryLimit = d.DefaultHistoryLimit
	}
	if o.MaxHistoryLimit <= 0 {
		o.MaxHistoryLimit = d.MaxHistoryLimit
	}
	if o.GenerationTier == "" {
		o.GenerationTier = d.GenerationTier
	}
	if o.EvaluationTier == "" {
		o.EvaluationTier = d.EvaluationTier
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Validator == nil {
		o.Validator = schemas.NewValidator(schemafiles.FS)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service runs the session lifecycle. It keeps no session state in memory;
// every call reads from and writes to the Store.
type Service struct {
	store     Store
	builder   *QuestionBuilder
	evaluator *AnswerEvaluator
	opts      Options
	logger    *slog.Logger
}

// NewService wires the engine to a model client and a store.
func NewService(client llm.Client, store Store, opts Options) *Service {
	opts = opts.withDefaults()

	return &Service{
		store: store,
		builder: &QuestionBuilder{
			provider:     provider{client: client, tier: opts.GenerationTier, timeout: opts.ProviderTimeout, observer: opts.Observer},
			validator:    opts.Validator,
			defaultCount: opts.DefaultQuestionCount,
			maxCount:     opts.MaxQuestionCount,
			resumeChars:  opts.MaxResumeChars,
		},
		evaluator: &AnswerEvaluator{
			provider:  provider{client: client, tier: opts.EvaluationTier, timeout: opts.ProviderTimeout, observer: opts.Observer},
			validator: opts.Validator,
		},
		opts:   opts,
		logger: opts.Logger,
	}
}

// StartSessionInput is the caller's request for a new session.
type StartSessionInput struct {
	OwnerID    uuid.UUID
	Role       string
	Difficulty string
	Count      int
	ResumeText string
}

// StartSession builds a question set and persists a new session with no answers.
// The session exists only if this returns without error.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*types.InterviewSession, error) {
	if in.OwnerID == uuid.Nil {
		return nil, &ValidationError{Field: "owner_id", Message: "is required"}
	}

	req, err := s.builder.Normalize(QuestionRequest{
		Role:       in.Role,
		ResumeText: in.ResumeText,
		Difficulty: types.Difficulty(in.Difficulty),
		Count:      in.Count,
	})
	if err != nil {
		return nil, err
	}

	questions, err := s.builder.build(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "question generation failed",
			"owner_id", in.OwnerID, "role", req.Role, "difficulty", req.Difficulty, "error", err)
		return nil, err
	}

	now := s.opts.Now().UTC()
	session := &types.InterviewSession{
		ID:         uuid.New(),
		OwnerID:    in.OwnerID,
		Role:       req.Role,
		Difficulty: req.Difficulty,
		Questions:  questions,
		Answers:    []types.Answer{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, &StorageError{Operation: "create session", Cause: err}
	}

	s.opts.Observer.SessionStarted(session.Role, session.Difficulty, len(questions))
	s.logger.InfoContext(ctx, "interview session started",
		"session_id", session.ID, "owner_id", session.OwnerID, "role", session.Role,
		"difficulty", session.Difficulty, "questions", len(questions), "personalized", req.ResumeText != "")

	return session, nil
}

// SubmitAnswerResult is the stored answer plus the session state it produced.
type SubmitAnswerResult struct {
	Answer   types.Answer
	Replaced bool
	State    types.SessionState
}

// SubmitAnswer evaluates answerText and records it against questionID.
// A second submission for the same question replaces the first (last one wins).
func (s *Service) SubmitAnswer(ctx context.Context, ownerID, sessionID uuid.UUID, questionID, answerText string) (*SubmitAnswerResult, error) {
	session, err := s.loadOwned(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	question := session.Question(questionID)
	if question == nil {
		return nil, &NotFoundError{Resource: "question", ID: questionID}
	}

	evaluation, err := s.evaluator.Evaluate(ctx, question.Text, answerText)
	if err != nil {
		s.logger.WarnContext(ctx, "answer evaluation failed",
			"session_id", sessionID, "question_id", questionID, "error", err)
		return nil, err
	}

	now := s.opts.Now().UTC()
	write, err := s.store.UpsertAnswer(ctx, sessionID, types.Answer{
		QuestionID: questionID,
		Text:       answerText,
		Score:      evaluation.Score,
		Feedback:   evaluation.Feedback,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, &StorageError{Operation: "upsert answer", Cause: err}
	}

	// state comes from the stored count; the session loaded above may be stale
	// when other answers for it were written concurrently
	state := types.StateFor(write.Answered, len(session.Questions))

	s.opts.Observer.AnswerSubmitted(write.Answer.Score, write.Replaced)
	s.logger.InfoContext(ctx, "answer recorded",
		"session_id", sessionID, "question_id", questionID, "score", write.Answer.Score,
		"replaced", write.Replaced, "state", state)

	return &SubmitAnswerResult{Answer: write.Answer, Replaced: write.Replaced, State: state}, nil
}

// GetResult returns the full session, including answers.
func (s *Service) GetResult(ctx context.Context, ownerID, sessionID uuid.UUID) (*types.InterviewSession, error) {
	return s.loadOwned(ctx, ownerID, sessionID)
}

// ListHistory returns the owner's sessions, newest first.
// limit <= 0 selects the default; larger limits are capped.
func (s *Service) ListHistory(ctx context.Context, ownerID uuid.UUID, limit int) ([]types.InterviewSession, error) {
	if limit <= 0 {
		limit = s.opts.DefaultHistoryLimit
	}
	if limit > s.opts.MaxHistoryLimit {
		limit = s.opts.MaxHistoryLimit
	}

	sessions, err := s.store.ListSessionsByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, &StorageError{Operation: "list sessions", Cause: err}
	}
	return sessions, nil
}

// Statistics aggregates every session the owner has, with no upper bound.
func (s *Service) Statistics(ctx context.Context, ownerID uuid.UUID) (*types.StatisticsSnapshot, error) {
	sessions, err := s.store.ListSessionsByOwner(ctx, ownerID, 0)
	if err != nil {
		return nil, &StorageError{Operation: "list sessions", Cause: err}
	}

	snapshot := Aggregate(sessions)
	return &snapshot, nil
}

// loadOwned reads a session and hides sessions that belong to someone else.
func (s *Service) loadOwned(ctx context.Context, ownerID, sessionID uuid.UUID) (*types.InterviewSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, &StorageError{Operation: "load session", Cause: err}
	}
	if session == nil || session.OwnerID != ownerID {
		return nil, &NotFoundError{Resource: "session", ID: sessionID.String()}
	}
	return session, nil
}

