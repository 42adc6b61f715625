package main

import (
	"bytes"
	"testing"

	"github.com/klokku/studyplan/internal/app"
	"github.com/klokku/studyplan/internal/config"
	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/internal/test_utils"
	"github.com/klokku/studyplan/pkg/achievement"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	stores := app.MemoryStores()
	deps := app.BuildDependencies(stores, nil, config.Defaults())
	var out bytes.Buffer
	cmdCtx := &Context{Deps: deps, Out: &out}

	broken := map[string]any{"day1": map[string]any{"hour10": map[string]any{"categoryId": "math"}}}
	require.NoError(t, docstore.SetJSON(test_utils.UserContext("user-1"), stores.Documents, "user-1", docstore.Schedules, "2024-03-04", broken))

	t.Run("repair reports the rewritten weeks", func(t *testing.T) {
		out.Reset()
		require.NoError(t, (&RepairCmd{User: "user-1"}).Run(cmdCtx))
		assert.Equal(t, "repaired 2024-03-04\n1 week(s) repaired.\n", out.String())

		out.Reset()
		require.NoError(t, (&RepairCmd{User: "user-1"}).Run(cmdCtx))
		assert.Equal(t, "All weeks are valid.\n", out.String())
	})

	t.Run("hours prints the weighted total", func(t *testing.T) {
		ctx := test_utils.UserContext("user-1")
		date := calendar_date.CalendarDate{Year: 2024, Month: 3, Day: 4}
		_, err := deps.AchievementService.Save(ctx, date, "day1", "hour10", achievement.Partial, "")
		require.NoError(t, err)

		out.Reset()
		require.NoError(t, (&HoursCmd{User: "user-1"}).Run(cmdCtx))
		assert.Equal(t, "0.7 hours over 1 week(s)\n", out.String())

		out.Reset()
		require.NoError(t, (&HoursCmd{User: "user-1", From: "2024-03-11"}).Run(cmdCtx))
		assert.Equal(t, "0 hours over 0 week(s)\n", out.String())
	})

	t.Run("hours rejects malformed dates", func(t *testing.T) {
		err := (&HoursCmd{User: "user-1", To: "March"}).Run(cmdCtx)
		assert.ErrorContains(t, err, "invalid --to")
	})

}
