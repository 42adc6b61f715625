package weekly_goal

import (
	"testing"
	"time"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/internal/test_utils"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wednesday = calendar_date.CalendarDate{Year: 2024, Month: time.March, Day: 6}

func TestServiceImpl(t *testing.T) {
	ctx := test_utils.UserContext("user-1")

	t.Run("should store the goal under the week identifier", func(t *testing.T) {
		service := NewService(docstore.NewMemoryStore())

		_, err := service.Set(ctx, wednesday, decimal.NewFromInt(12))
		require.NoError(t, err)
		goal, found, err := service.Get(ctx, wednesday.AddDays(4))

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "2024-03-04", goal.WeekId)
		assert.True(t, decimal.NewFromInt(12).Equal(goal.TargetHours))
	})

	t.Run("should report a missing goal", func(t *testing.T) {
		service := NewService(docstore.NewMemoryStore())

		goal, found, err := service.Get(ctx, wednesday)

		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, "2024-03-04", goal.WeekId)
	})

	t.Run("should reject impossible targets", func(t *testing.T) {
		service := NewService(docstore.NewMemoryStore())

		_, err := service.Set(ctx, wednesday, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, ErrInvalidGoal)
		_, err = service.Set(ctx, wednesday, decimal.NewFromInt(200))
		assert.ErrorIs(t, err, ErrInvalidGoal)
	})
}

func TestGoal_Progress(t *testing.T) {
	goal := Goal{TargetHours: decimal.NewFromInt(8)}

	assert.Equal(t, 0, Goal{}.Progress(decimal.NewFromInt(3)))
	assert.Equal(t, 55, goal.Progress(decimal.RequireFromString("4.4")))
	assert.Equal(t, 100, goal.Progress(decimal.NewFromInt(20)))
}
