package types

import "time"

// ProgressPoint is one session's average score on the progress chart.
type ProgressPoint struct {
	SessionID string    `json:"session_id"`
	Date      time.Time `json:"date"`
	Score     float64   `json:"score"`
}

// StatisticsSnapshot aggregates every session an owner has taken.
// It is computed on demand and never persisted.
type StatisticsSnapshot struct {
	TotalInterviews        int             `json:"total_interviews"`
	AverageScore           float64         `json:"average_score"`
	BestScore              float64         `json:"best_score"`
	WorstScore             float64         `json:"worst_score"`
	TotalQuestionsAnswered int             `json:"total_questions_answered"`
	RoleBreakdown          map[string]int  `json:"role_breakdown"`
	DifficultyBreakdown    map[string]int  `json:"difficulty_breakdown"`
	RecentProgress         []ProgressPoint `json:"recent_progress"`
}

// EmptyStatistics returns the zero snapshot with non-nil maps and series,
// so that it serializes as {} and [] rather than null.
func EmptyStatistics() StatisticsSnapshot {
	return StatisticsSnapshot{
		RoleBreakdown:       map[string]int{},
		DifficultyBreakdown: map[string]int{},
		RecentProgress:      []ProgressPoint{},
	}
}
