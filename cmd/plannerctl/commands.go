package main

import (
	"context"
	"fmt"
	"io"

	"github.com/klokku/studyplan/internal/app"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/stats"
	"github.com/klokku/studyplan/pkg/user"
)

type Context struct {
	Deps *app.Dependencies
	Out  io.Writer
}

type RepairCmd struct {
	User string `help:"Uid of the user." required:""`
	Demo bool   `help:"Repair the demo session of the user instead."`
}

func (c *RepairCmd) Run(ctx *Context) error {
	userCtx := user.WithUser(context.Background(), user.User{Uid: c.User, Demo: c.Demo})
	repaired, err := ctx.Deps.ScheduleService.RepairAll(userCtx)
	if err != nil {
		return err
	}
	if len(repaired) == 0 {
		fmt.Fprintln(ctx.Out, "All weeks are valid.")
		return nil
	}
	for _, weekId := range repaired {
		fmt.Fprintf(ctx.Out, "repaired %s\n", weekId)
	}
	fmt.Fprintf(ctx.Out, "%d week(s) repaired.\n", len(repaired))
	return nil
}

type HoursCmd struct {
	User string `help:"Uid of the user." required:""`
	From string `help:"First day counted (YYYY-MM-DD)."`
	To   string `help:"Last day counted (YYYY-MM-DD)."`
}

func (c *HoursCmd) Run(ctx *Context) error {
	dateRange, err := c.dateRange()
	if err != nil {
		return err
	}
	userCtx := user.WithUser(context.Background(), user.User{Uid: c.User})
	summary, err := ctx.Deps.StatsService.GetAllTimeHours(userCtx, dateRange)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s hours over %d week(s)\n", summary.Hours.String(), summary.Weeks)
	return nil
}

func (c *HoursCmd) dateRange() (stats.DateRange, error) {
	var dateRange stats.DateRange
	if c.From != "" {
		from, err := calendar_date.ParseString(c.From)
		if err != nil {
			return dateRange, fmt.Errorf("invalid --from: %w", err)
		}
		dateRange.From = from
	}
	if c.To != "" {
		to, err := calendar_date.ParseString(c.To)
		if err != nil {
			return dateRange, fmt.Errorf("invalid --to: %w", err)
		}
		dateRange.To = to
	}
	return dateRange, nil
}
