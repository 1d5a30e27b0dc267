package interview

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statSession(role string, created time.Time, difficulty types.Difficulty, questions int, scores ...float64) types.InterviewSession {
	s := types.InterviewSession{
		ID:         uuid.New(),
		Role:       role,
		Difficulty: difficulty,
		CreatedAt:  created,
	}
	for i := range questions {
		s.Questions = append(s.Questions, types.Question{ID: questionID(i), Text: "?", Difficulty: difficulty})
	}
	for i, score := range scores {
		s.Answers = append(s.Answers, types.Answer{QuestionID: questionID(i), Score: score})
	}
	return s
}

func TestAggregate_Empty(t *testing.T) {
	snapshot := Aggregate(nil)
	assert.Zero(t, snapshot.TotalInterviews)
	assert.Zero(t, snapshot.AverageScore)
	assert.Zero(t, snapshot.BestScore)
	assert.Zero(t, snapshot.WorstScore)
	assert.NotNil(t, snapshot.RoleBreakdown)
	assert.NotNil(t, snapshot.DifficultyBreakdown)
	assert.NotNil(t, snapshot.RecentProgress)
}

func TestAggregate_SingleSession(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	snapshot := Aggregate([]types.InterviewSession{
		statSession("Backend", day, types.DifficultyMedium, 3, 4, 8),
	})

	assert.Equal(t, 1, snapshot.TotalInterviews)
	assert.Equal(t, 6.0, snapshot.AverageScore)
	assert.Equal(t, 6.0, snapshot.BestScore)
	assert.Equal(t, 6.0, snapshot.WorstScore)
	assert.Equal(t, 2, snapshot.TotalQuestionsAnswered)
	assert.Equal(t, map[string]int{"medium": 3}, snapshot.DifficultyBreakdown, "unanswered questions still count")
}

func TestAggregate_MeanOfSessionAverages(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	snapshot := Aggregate([]types.InterviewSession{
		statSession("Backend", day, types.DifficultyEasy, 3, 6, 6, 6),
		statSession("Frontend", day.Add(time.Hour), types.DifficultyHard, 1, 10),
	})

	assert.Equal(t, 8.0, snapshot.AverageScore, "not the 7.0 a per-answer mean would give")
	assert.Equal(t, 10.0, snapshot.BestScore)
	assert.Equal(t, 6.0, snapshot.WorstScore)
	assert.Equal(t, 4, snapshot.TotalQuestionsAnswered)
	assert.Equal(t, map[string]int{"Backend": 1, "Frontend": 1}, snapshot.RoleBreakdown)
	assert.Equal(t, map[string]int{"easy": 3, "hard": 1}, snapshot.DifficultyBreakdown)
}

func TestAggregate_UnansweredSessionCountsAsZero(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	snapshot := Aggregate([]types.InterviewSession{
		statSession("Backend", day, types.DifficultyMedium, 2, 9, 7),
		statSession("Backend", day.Add(time.Hour), types.DifficultyMedium, 2),
	})

	assert.Equal(t, 2, snapshot.TotalInterviews)
	assert.Equal(t, 4.0, snapshot.AverageScore)
	assert.Equal(t, 8.0, snapshot.BestScore)
	assert.Equal(t, 0.0, snapshot.WorstScore)
	assert.Equal(t, 4, snapshot.DifficultyBreakdown["medium"])
}

func TestAggregate_RecentProgressIsOldestToNewestOfLastTen(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var sessions []types.InterviewSession
	for i := range 12 {
		sessions = append(sessions, statSession("Backend", base.Add(time.Duration(i)*24*time.Hour), types.DifficultyMedium, 1, float64(i%11)))
	}
	// reverse so input order cannot leak into the result
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}

	snapshot := Aggregate(sessions)
	require.Len(t, snapshot.RecentProgress, RecentProgressSessions)
	assert.Equal(t, 12, snapshot.TotalInterviews)

	for i, point := range snapshot.RecentProgress {
		want := base.Add(time.Duration(i+2) * 24 * time.Hour)
		assert.True(t, want.Equal(point.Date), "point %d", i)
	}
	last := snapshot.RecentProgress[len(snapshot.RecentProgress)-1]
	assert.Equal(t, sessions[0].ID.String(), last.SessionID)
	assert.Equal(t, 0.0, last.Score) // session 11 scored 11%11
}
