package event_bus

import "github.com/klokku/studyplan/pkg/calendar_date"

const (
	AchievementChanged EventType = "achievement.changed"
	ScheduleChanged    EventType = "schedule.changed"
)

// AchievementChangedEvent is published after an achievement write was confirmed by the store.
type AchievementChangedEvent struct {
	Owner   string
	WeekId  string
	Key     string
	Deleted bool
}

// ScheduleChangedEvent is published after a week grid write was confirmed by the store.
type ScheduleChangedEvent struct {
	Owner     string
	WeekStart calendar_date.CalendarDate
	// CascadedAchievements lists the achievement keys removed together with the slots.
	CascadedAchievements []string
}
