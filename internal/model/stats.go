package model

// Metrics is a read-only snapshot of derived progress statistics.
type Metrics struct {
	CompletionPercentage  int                `json:"completionPercentage"`
	CompletedCount        int                `json:"completedCount"`
	TotalTutorials        int                `json:"totalTutorials"`
	TotalTimeSpentMinutes int                `json:"totalTimeSpentMinutes"`
	CategoryBreakdown     []CategoryStat     `json:"categoryBreakdown"`
	Streak                int                `json:"streak"`
	Achievements          []Achievement      `json:"achievements"`
	Tutorials             []TutorialProgress `json:"tutorials"`
}

// CategoryStat holds per-category completion counts.
type CategoryStat struct {
	Category   string `json:"category"`
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
	Percentage int    `json:"percentage"`
}

// Achievement is a label unlocked by current metrics.
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

// TutorialProgress is one row of the per-tutorial progress table.
type TutorialProgress struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
	TimeSpent int    `json:"timeSpent"`
}

// UnlockedAchievements returns the names of unlocked achievements in rule order.
func (m Metrics) UnlockedAchievements() []string {
	var names []string
	for _, a := range m.Achievements {
		if a.Unlocked {
			names = append(names, a.Name)
		}
	}
	return names
}
