package interview

import (
	"sort"

	"github.com/jonathan/interview-coach/internal/types"
)

// RecentProgressSessions is how many of the newest sessions appear in RecentProgress.
const RecentProgressSessions = 10

// Aggregate computes the statistics snapshot for a set of sessions.
//
// A session with no answers averages 0 and still takes part in the
// average, best and worst scores. AverageScore is the mean of per-session
// averages, not a mean over all answers. DifficultyBreakdown counts
// questions, answered or not.
func Aggregate(sessions []types.InterviewSession) types.StatisticsSnapshot {
	snapshot := types.EmptyStatistics()
	if len(sessions) == 0 {
		return snapshot
	}

	// newest first, whatever order the store used
	ordered := make([]types.InterviewSession, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	var sum float64
	for i := range ordered {
		session := &ordered[i]
		avg := session.AverageScore()

		sum += avg
		if i == 0 || avg > snapshot.BestScore {
			snapshot.BestScore = avg
		}
		if i == 0 || avg < snapshot.WorstScore {
			snapshot.WorstScore = avg
		}

		snapshot.RoleBreakdown[session.Role]++
		for _, q := range session.Questions {
			snapshot.DifficultyBreakdown[string(q.Difficulty)]++
		}
		snapshot.TotalQuestionsAnswered += len(session.Answers)
	}

	snapshot.TotalInterviews = len(ordered)
	snapshot.AverageScore = sum / float64(len(ordered))

	recent := min(len(ordered), RecentProgressSessions)
	snapshot.RecentProgress = make([]types.ProgressPoint, 0, recent)
	for i := recent - 1; i >= 0; i-- {
		session := &ordered[i]
		snapshot.RecentProgress = append(snapshot.RecentProgress, types.ProgressPoint{
			SessionID: session.ID.String(),
			Date:      session.CreatedAt,
			Score:     session.AverageScore(),
		})
	}

	return snapshot
}
