package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
)

func sampleSession() *types.InterviewSession {
	created := time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)
	return &types.InterviewSession{
		ID:         uuid.New(),
		Role:       "Platform Engineer",
		Difficulty: types.DifficultyHard,
		Questions: []types.Question{
			{ID: "q1", Text: "How would you roll out a schema change with zero downtime?", Difficulty: types.DifficultyHard},
			{ID: "q2", Text: "Explain leader election.", Difficulty: types.DifficultyHard},
		},
		Answers: []types.Answer{
			{QuestionID: "q1", Text: "Expand and contract.", Score: 8, Feedback: "Good, mention backfills."},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestPrintSession(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSession(sampleSession())
	output := buf.String()

	assert.Contains(t, output, "INTERVIEW SESSION")
	assert.Contains(t, output, "Platform Engineer")
	assert.Contains(t, output, "in_progress (1/2 answered)")
	assert.Contains(t, output, "Score: 8.0")
	assert.Contains(t, output, "Feedback: Good, mention backfills.")
	assert.Contains(t, output, "(not answered)")
}

func TestPrintSession_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSession(nil)
	assert.Empty(t, buf.String())
}

func TestPrintStatistics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	stats := &types.StatisticsSnapshot{
		TotalInterviews:        2,
		AverageScore:           7.3,
		BestScore:              9,
		WorstScore:             5.5,
		TotalQuestionsAnswered: 6,
		RoleBreakdown:          map[string]int{"Backend": 1, "SRE": 1},
		DifficultyBreakdown:    map[string]int{"easy": 3, "hard": 5},
		RecentProgress: []types.ProgressPoint{
			{SessionID: "a", Date: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), Score: 5.5},
			{SessionID: "b", Date: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC), Score: 9},
		},
	}

	p.PrintStatistics(stats)
	output := buf.String()

	assert.Contains(t, output, "INTERVIEW STATISTICS")
	assert.Contains(t, output, "7.3 / 10")
	assert.Contains(t, output, "9.0 / 5.5")
	assert.Contains(t, output, "Backend (1)")
	assert.Contains(t, output, "2026-04-01 09:00")
	assert.Less(t, strings.Index(output, "easy"), strings.Index(output, "hard"), "difficulties in ascending order")
	assert.NotContains(t, output, "medium")
}

func TestPrintStatistics_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStatistics(&types.StatisticsSnapshot{})
	assert.Contains(t, buf.String(), "No interviews yet.")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintHistory([]types.InterviewSession{*sampleSession()})
	assert.Contains(t, buf.String(), "INTERVIEW HISTORY (1)")
	assert.Contains(t, buf.String(), "Platform Engineer")

	buf.Reset()
	p.PrintHistory(nil)
	assert.Contains(t, buf.String(), "No interviews yet.")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 200))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line))
	}
	assert.Contains(t, buf.String(), "...")
}

func TestScoreBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", scoreBar(0))
	assert.Equal(t, "█████░░░░░", scoreBar(4.6))
	assert.Equal(t, "██████████", scoreBar(10))
}
