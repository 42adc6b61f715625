package stats

import (
	"testing"
	"time"

	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/preferences"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvStatsRendererImpl_RenderStats(t *testing.T) {
	weekStats := WeeklyStats{
		WeekStart: calendar_date.CalendarDate{Year: 2024, Month: time.March, Day: 4},
		Policy:    preferences.AchievementsOnly,
		Categories: []CategoryStats{
			{CategoryId: "math", Name: "Math", Minutes: 180},
			{CategoryId: "art", Name: "Art, drawing", Minutes: 0},
			{CategoryId: "physics", Name: "physics", Minutes: 60},
		},
		TotalHours:     4,
		PlannedSlots:   6,
		RecordedSlots:  5,
		RecordRate:     83,
		CompletionRate: 67,
	}
	tests := []struct {
		name string
		goal *GoalProgress
		want string
	}{
		{
			name: "without goal",
			want: "Week of 2024-03-04,Math,\"Art, drawing\",physics,SUM\n" +
				"Studied,03:00:00,00:00:00,01:00:00,04:00:00\n" +
				"Counting,achievementsOnly\n" +
				"Planned slots,6\n" +
				"Record rate,83%\n" +
				"Completion rate,67%\n",
		},
		{
			name: "with goal",
			goal: &GoalProgress{TargetHours: decimal.NewFromInt(8), AchievedHours: decimal.NewFromInt(4), Percent: 50},
			want: "Week of 2024-03-04,Math,\"Art, drawing\",physics,SUM\n" +
				"Studied,03:00:00,00:00:00,01:00:00,04:00:00\n" +
				"Counting,achievementsOnly\n" +
				"Planned slots,6\n" +
				"Record rate,83%\n" +
				"Completion rate,67%\n" +
				"Goal,8h,50%\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := weekStats
			s.Goal = tt.goal

			got, err := NewCsvStatsRenderer().RenderStats(s)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDurationToString(t *testing.T) {
	assert.Equal(t, "00:00:00", durationToString(0))
	assert.Equal(t, "01:30:00", durationToString(90*time.Minute))
	assert.Equal(t, "124:00:00", durationToString(124*time.Hour))
}
