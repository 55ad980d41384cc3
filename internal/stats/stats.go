// Package stats derives progress statistics from a catalog and a progress map.
//
// Everything here is a pure function of its inputs: no I/O, no clocks, no
// shared state. Compute is cheap enough to run on every read.
package stats

import (
	"time"

	"github.com/kalyxon/progress-server/internal/model"
)

// MaxStreak caps the streak value.
const MaxStreak = 30

type rule struct {
	name        string
	description string
	unlocked    func(m model.Metrics) bool
}

var rules = []rule{
	{"Quick Starter", "25% progress", func(m model.Metrics) bool { return m.CompletionPercentage >= 25 }},
	{"Halfway There", "50% progress", func(m model.Metrics) bool { return m.CompletionPercentage >= 50 }},
	{"Almost Master", "75% progress", func(m model.Metrics) bool { return m.CompletionPercentage >= 75 }},
	{"Master", "100% complete", func(m model.Metrics) bool { return m.CompletionPercentage == 100 }},
	{"Time Warrior", "5+ hours", func(m model.Metrics) bool { return m.TotalTimeSpentMinutes >= 300 }},
	{"Week Warrior", "7-day streak", func(m model.Metrics) bool { return m.Streak >= 7 }},
}

// Compute derives metrics for progress against catalog. Progress entries whose
// id is not in the catalog are ignored.
func Compute(catalog []model.Tutorial, progress model.ProgressMap) model.Metrics {
	m := model.Metrics{
		TotalTutorials:    len(catalog),
		CategoryBreakdown: []model.CategoryStat{},
		Tutorials:         make([]model.TutorialProgress, 0, len(catalog)),
	}

	index := make(map[string]int)
	days := make(map[string]struct{})

	for _, t := range catalog {
		i, ok := index[t.Category]
		if !ok {
			i = len(m.CategoryBreakdown)
			index[t.Category] = i
			m.CategoryBreakdown = append(m.CategoryBreakdown, model.CategoryStat{Category: t.Category})
		}
		m.CategoryBreakdown[i].Total++

		row := model.TutorialProgress{ID: t.ID, Title: t.Title, Category: t.Category}

		rec, ok := progress[t.ID]
		if ok && rec.Completed {
			m.CompletedCount++
			m.TotalTimeSpentMinutes += rec.TimeSpent
			m.CategoryBreakdown[i].Completed++
			if !rec.CompletedAt.IsZero() {
				days[dayKey(rec.CompletedAt)] = struct{}{}
			}
			row.Completed = true
			row.TimeSpent = rec.TimeSpent
		}
		m.Tutorials = append(m.Tutorials, row)
	}

	m.CompletionPercentage = Percentage(m.CompletedCount, m.TotalTutorials)
	for i := range m.CategoryBreakdown {
		c := &m.CategoryBreakdown[i]
		c.Percentage = Percentage(c.Completed, c.Total)
	}
	m.Streak = min(len(days), MaxStreak)
	m.Achievements = Achievements(m)

	return m
}

// Percentage returns round(100*part/total), rounding halves up. It returns 0
// when total is not positive.
func Percentage(part, total int) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	if part > total {
		part = total
	}
	return (200*part + total) / (2 * total)
}

// Streak counts distinct UTC days among completed records, capped at MaxStreak.
// Days are not checked for being consecutive.
func Streak(progress model.ProgressMap) int {
	days := make(map[string]struct{})
	for _, rec := range progress {
		if rec.Completed && !rec.CompletedAt.IsZero() {
			days[dayKey(rec.CompletedAt)] = struct{}{}
		}
	}
	return min(len(days), MaxStreak)
}

// Achievements evaluates every rule against m, in rule order.
func Achievements(m model.Metrics) []model.Achievement {
	out := make([]model.Achievement, 0, len(rules))
	for _, r := range rules {
		out = append(out, model.Achievement{
			Name:        r.name,
			Description: r.description,
			Unlocked:    r.unlocked(m),
		})
	}
	return out
}

func dayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
