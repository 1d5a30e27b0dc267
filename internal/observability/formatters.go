// Package observability provides logging, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/interview-coach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// dateLayout is used for session and progress dates
	dateLayout = "2006-01-02 15:04"
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fitLine(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// fitLine truncates line to width runes, marking the cut with "...".
func fitLine(line string, width int) string {
	if utf8.RuneCountInString(line) <= width {
		return line
	}
	runes := []rune(line)
	return string(runes[:width-3]) + "..."
}

// PrintStatistics outputs a summary of an owner's interview statistics.
func (p *Printer) PrintStatistics(stats *types.StatisticsSnapshot) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Interviews:        %d\n", stats.TotalInterviews))
	sb.WriteString(fmt.Sprintf("Questions answered: %d\n", stats.TotalQuestionsAnswered))

	if stats.TotalInterviews == 0 {
		sb.WriteString("\nNo interviews yet.")
		p.printBox("INTERVIEW STATISTICS", sb.String())
		return
	}

	sb.WriteString(fmt.Sprintf("Average score:     %.1f / 10\n", stats.AverageScore))
	sb.WriteString(fmt.Sprintf("Best / worst:      %.1f / %.1f\n", stats.BestScore, stats.WorstScore))

	if len(stats.RoleBreakdown) > 0 {
		sb.WriteString("\nRoles:\n")
		writeBreakdown(&sb, stats.RoleBreakdown)
	}
	if len(stats.DifficultyBreakdown) > 0 {
		sb.WriteString("\nQuestions by difficulty:\n")
		for _, d := range types.Difficulties {
			if n := stats.DifficultyBreakdown[string(d)]; n > 0 {
				sb.WriteString(fmt.Sprintf("  • %-8s %d\n", d, n))
			}
		}
	}
	if len(stats.RecentProgress) > 0 {
		sb.WriteString("\nRecent progress:\n")
		for _, point := range stats.RecentProgress {
			sb.WriteString(fmt.Sprintf("  %s  %4.1f  %s\n", point.Date.Format(dateLayout), point.Score, scoreBar(point.Score)))
		}
	}

	p.printBox("INTERVIEW STATISTICS", strings.TrimSuffix(sb.String(), "\n"))
}

// writeBreakdown writes the largest entries first, then the remainder count.
func writeBreakdown(sb *strings.Builder, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	count := min(len(keys), maxItemsToShow)
	for _, k := range keys[:count] {
		sb.WriteString(fmt.Sprintf("  • %s (%d)\n", k, counts[k]))
	}
	if len(keys) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(keys)-maxItemsToShow))
	}
}

// scoreBar renders a 0-10 score as a ten-cell bar.
func scoreBar(score float64) string {
	filled := int(score + 0.5)
	filled = max(0, min(filled, 10))
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

// PrintSession outputs a session with every question and its answer, if any.
func (p *Printer) PrintSession(session *types.InterviewSession) {
	if session == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Session:    %s\n", session.ID))
	sb.WriteString(fmt.Sprintf("Role:       %s\n", session.Role))
	sb.WriteString(fmt.Sprintf("Difficulty: %s\n", session.Difficulty))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", session.CreatedAt.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("State:      %s (%d/%d answered)\n", session.State(), len(session.Answers), len(session.Questions)))
	if len(session.Answers) > 0 {
		sb.WriteString(fmt.Sprintf("Average:    %.1f / 10\n", session.AverageScore()))
	}

	for i, q := range session.Questions {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, q.ID, q.Text))
		answer := session.Answer(q.ID)
		if answer == nil {
			sb.WriteString("   (not answered)\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("   Score: %.1f  %s\n", answer.Score, scoreBar(answer.Score)))
		if answer.Feedback != "" {
			sb.WriteString(fmt.Sprintf("   Feedback: %s\n", answer.Feedback))
		}
	}

	p.printBox("INTERVIEW SESSION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHistory outputs one line per session, newest first.
func (p *Printer) PrintHistory(sessions []types.InterviewSession) {
	if len(sessions) == 0 {
		p.printBox("INTERVIEW HISTORY", "No interviews yet.")
		return
	}

	var sb strings.Builder
	for i := range sessions {
		s := &sessions[i]
		sb.WriteString(fmt.Sprintf("%s  %-6s %4.1f  %s\n",
			s.CreatedAt.Format(dateLayout), s.Difficulty, s.AverageScore(), s.Role))
	}
	p.printBox(fmt.Sprintf("INTERVIEW HISTORY (%d)", len(sessions)), strings.TrimSuffix(sb.String(), "\n"))
}
