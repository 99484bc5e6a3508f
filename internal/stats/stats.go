// Package stats derives dashboard figures from raw rows. All functions are
// pure: given the same rows they return the same results, and nothing here
// touches the database.
package stats

import (
	"time"

	"booktracker/internal/entities"
)

// inRange reports whether t falls within [from, to).
func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// PagesRead sums pages read over sessions dated within [from, to).
func PagesRead(sessions []entities.ReadingSession, from, to time.Time) int {
	total := 0
	for _, s := range sessions {
		if inRange(s.Date, from, to) {
			total += s.PagesRead
		}
	}
	return total
}

// MinutesRead sums logged minutes over sessions dated within [from, to).
func MinutesRead(sessions []entities.ReadingSession, from, to time.Time) int {
	total := 0
	for _, s := range sessions {
		if inRange(s.Date, from, to) {
			total += s.DurationMinutes
		}
	}
	return total
}

// BooksFinished counts books on the finished shelf whose AddedAt falls within
// [from, to).
func BooksFinished(books []entities.Book, from, to time.Time) int {
	count := 0
	for _, b := range books {
		if b.Shelf == entities.ShelfFinished && inRange(b.AddedAt, from, to) {
			count++
		}
	}
	return count
}

// ShelfCounts tallies books per shelf.
func ShelfCounts(books []entities.Book) map[entities.Shelf]int {
	counts := make(map[entities.Shelf]int, len(entities.Shelves))
	for _, shelf := range entities.Shelves {
		counts[shelf] = 0
	}
	for _, b := range books {
		counts[b.Shelf]++
	}
	return counts
}

// GoalProgress is the derived completion state of a goal.
type GoalProgress struct {
	Current int     `json:"current"`
	Target  int     `json:"target"`
	Percent float64 `json:"percent"`         // uncapped, never negative
	Display float64 `json:"display_percent"` // clamped to [0, 100] for rendering
}

// ProgressForGoal recomputes a goal's progress from the underlying rows.
// The pages metric sums session pages within the goal period; the books
// metric counts finished books added within the period.
func ProgressForGoal(goal entities.Goal, books []entities.Book, sessions []entities.ReadingSession) GoalProgress {
	var current int
	switch goal.Metric {
	case entities.GoalMetricPages:
		current = PagesRead(sessions, goal.PeriodStart, goal.PeriodEnd)
	case entities.GoalMetricBooks:
		current = BooksFinished(books, goal.PeriodStart, goal.PeriodEnd)
	}

	progress := GoalProgress{Current: current, Target: goal.Target}
	if goal.Target > 0 {
		progress.Percent = float64(current) / float64(goal.Target) * 100
	}
	if progress.Percent < 0 {
		progress.Percent = 0
	}
	progress.Display = progress.Percent
	if progress.Display > 100 {
		progress.Display = 100
	}
	return progress
}

// GoalWithProgress pairs a goal with its recomputed progress.
type GoalWithProgress struct {
	Goal     entities.Goal `json:"goal"`
	Progress GoalProgress  `json:"progress"`
}

// Summary holds the dashboard figures.
type Summary struct {
	TotalBooks      int                    `json:"total_books"`
	ShelfCounts     map[entities.Shelf]int `json:"shelf_counts"`
	TotalSessions   int                    `json:"total_sessions"`
	PagesThisMonth  int                    `json:"pages_this_month"`
	PagesThisYear   int                    `json:"pages_this_year"`
	MinutesThisWeek int                    `json:"minutes_this_week"`
	HoursLogged     float64                `json:"hours_logged"`
	Goals           []GoalWithProgress     `json:"goals"`
}

// MonthRange returns the [start, end) of the month containing now.
func MonthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// YearRange returns the [start, end) of the year containing now.
func YearRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(1, 0, 0)
}

// WeekRange returns the [start, end) of the ISO week (Monday-based)
// containing now.
func WeekRange(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 7)
}

// BuildSummary computes all dashboard figures at once.
func BuildSummary(now time.Time, books []entities.Book, sessions []entities.ReadingSession, goals []entities.Goal) Summary {
	monthStart, monthEnd := MonthRange(now)
	yearStart, yearEnd := YearRange(now)
	weekStart, weekEnd := WeekRange(now)

	totalMinutes := 0
	for _, s := range sessions {
		totalMinutes += s.DurationMinutes
	}

	summary := Summary{
		TotalBooks:      len(books),
		ShelfCounts:     ShelfCounts(books),
		TotalSessions:   len(sessions),
		PagesThisMonth:  PagesRead(sessions, monthStart, monthEnd),
		PagesThisYear:   PagesRead(sessions, yearStart, yearEnd),
		MinutesThisWeek: MinutesRead(sessions, weekStart, weekEnd),
		HoursLogged:     float64(totalMinutes) / 60,
		Goals:           make([]GoalWithProgress, 0, len(goals)),
	}
	for _, goal := range goals {
		summary.Goals = append(summary.Goals, GoalWithProgress{
			Goal:     goal,
			Progress: ProgressForGoal(goal, books, sessions),
		})
	}
	return summary
}
