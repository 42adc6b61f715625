package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/klokku/studyplan/internal/event_bus"
	"github.com/klokku/studyplan/pkg/achievement"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/category"
	"github.com/klokku/studyplan/pkg/preferences"
	"github.com/klokku/studyplan/pkg/schedule"
	"github.com/klokku/studyplan/pkg/user"
	"github.com/klokku/studyplan/pkg/weekly_goal"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned to an all-time request when a newer request of the
// same user started before it finished. Its result is discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

type StatsService interface {
	GetWeeklyStats(ctx context.Context, date calendar_date.CalendarDate) (WeeklyStats, error)
	// GetAllTimeHours answers the latest request of a user; older running ones get ErrSuperseded.
	GetAllTimeHours(ctx context.Context, dateRange DateRange) (AllTimeSummary, error)
	// CumulativeHours is the unbounded all-time total. It is never superseded.
	CumulativeHours(ctx context.Context) (decimal.Decimal, error)
}

type ScheduleReader interface {
	GetWeek(ctx context.Context, date calendar_date.CalendarDate) (schedule.WeekGrid, error)
}

type AchievementReader interface {
	GetWeek(ctx context.Context, date calendar_date.CalendarDate) (achievement.Map, error)
}

type CategoryReader interface {
	List(ctx context.Context) ([]category.Category, error)
}

type PolicyReader interface {
	GetInclusionPolicy(ctx context.Context) (preferences.InclusionPolicy, error)
}

type GoalReader interface {
	Get(ctx context.Context, date calendar_date.CalendarDate) (weekly_goal.Goal, bool, error)
}

type ScheduleLister interface {
	ListWeeks(ctx context.Context, owner string) (map[string]schedule.PersistedGrid, error)
}

type AchievementLister interface {
	ListWeeks(ctx context.Context, owner string) (map[string]achievement.Map, error)
}

type Readers struct {
	Schedules        ScheduleReader
	Achievements     AchievementReader
	Categories       CategoryReader
	Policy           PolicyReader
	Goals            GoalReader
	ScheduleWeeks    ScheduleLister
	AchievementWeeks AchievementLister
}

type StatsServiceImpl struct {
	readers Readers
	cache   *allTimeCache
	runner  *latestWins
}

func NewStatsServiceImpl(readers Readers, eventBus *event_bus.EventBus) *StatsServiceImpl {
	s := &StatsServiceImpl{
		readers: readers,
		cache:   newAllTimeCache(),
		runner:  newLatestWins(),
	}
	if eventBus != nil {
		event_bus.SubscribeTyped(eventBus, event_bus.AchievementChanged,
			func(e event_bus.EventT[event_bus.AchievementChangedEvent]) error {
				log.Debugf("achievement %s changed, dropping all-time totals of its owner", e.Data.Key)
				s.invalidate(e.Context(), e.Data.Owner)
				return nil
			},
		)
		event_bus.SubscribeTyped(eventBus, event_bus.ScheduleChanged,
			func(e event_bus.EventT[event_bus.ScheduleChangedEvent]) error {
				log.Debugf("schedule of week %s changed, dropping all-time totals of its owner", e.Data.WeekStart)
				s.invalidate(e.Context(), e.Data.Owner)
				return nil
			},
		)
	}
	return s
}

// invalidate drops the totals of the session that changed. Without a user in
// the event context both sessions of the owner are dropped.
func (s *StatsServiceImpl) invalidate(ctx context.Context, owner string) {
	if u, err := user.CurrentUser(ctx); err == nil && u.Uid == owner {
		s.cache.invalidate(u.SessionKey())
		return
	}
	s.cache.invalidate(user.User{Uid: owner}.SessionKey())
	s.cache.invalidate(user.User{Uid: owner, Demo: true}.SessionKey())
}

func (s *StatsServiceImpl) GetWeeklyStats(ctx context.Context, date calendar_date.CalendarDate) (WeeklyStats, error) {
	var (
		grid         schedule.WeekGrid
		achievements achievement.Map
		categories   []category.Category
		policy       preferences.InclusionPolicy
		goal         weekly_goal.Goal
		goalSet      bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		grid, err = s.readers.Schedules.GetWeek(gctx, date)
		return err
	})
	g.Go(func() (err error) {
		achievements, err = s.readers.Achievements.GetWeek(gctx, date)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.readers.Categories.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		policy, err = s.readers.Policy.GetInclusionPolicy(gctx)
		return err
	})
	g.Go(func() (err error) {
		goal, goalSet, err = s.readers.Goals.Get(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return WeeklyStats{}, fmt.Errorf("failed to load week %s: %w", schedule.WeekIdentifier(date), err)
	}

	totalHours := WeekTotalHours(grid, achievements, policy)
	stats := WeeklyStats{
		WeekStart:      schedule.StartOfWeek(date),
		Policy:         policy,
		Categories:     categoryStats(categories, CategoryMinutes(grid, categories, achievements, policy)),
		TotalHours:     totalHours,
		PlannedSlots:   len(grid.PlannedSlots()),
		RecordedSlots:  recordedSlots(grid, achievements),
		RecordRate:     RecordRate(grid, achievements),
		CompletionRate: CompletionRate(grid, achievements),
	}
	if goalSet {
		achieved := decimal.NewFromFloat(totalHours)
		stats.Goal = &GoalProgress{
			TargetHours:   goal.TargetHours,
			AchievedHours: achieved,
			Percent:       goal.Progress(achieved),
		}
	}
	return stats, nil
}

func (s *StatsServiceImpl) GetAllTimeHours(ctx context.Context, dateRange DateRange) (AllTimeSummary, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return AllTimeSummary{}, fmt.Errorf("failed to get current user: %w", err)
	}
	session := current.SessionKey()
	if summary, ok := s.cache.get(session, dateRange); ok {
		return summary, nil
	}
	generation := s.cache.generation(session)

	runCtx, done := s.runner.start(ctx, session)
	defer done()

	summary, err := s.computeAllTime(runCtx, current.Uid, dateRange)
	if errors.Is(context.Cause(runCtx), ErrSuperseded) {
		log.Debugf("all-time request %v of %s superseded, discarding result", dateRange, session)
		return AllTimeSummary{}, ErrSuperseded
	}
	if err != nil {
		return AllTimeSummary{}, err
	}
	s.cache.put(session, dateRange, generation, summary)
	return summary, nil
}

func (s *StatsServiceImpl) CumulativeHours(ctx context.Context) (decimal.Decimal, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get current user: %w", err)
	}
	session := current.SessionKey()
	if summary, ok := s.cache.get(session, DateRange{}); ok {
		return summary.Hours, nil
	}
	generation := s.cache.generation(session)
	summary, err := s.computeAllTime(ctx, current.Uid, DateRange{})
	if err != nil {
		return decimal.Zero, err
	}
	s.cache.put(session, DateRange{}, generation, summary)
	return summary.Hours, nil
}

func (s *StatsServiceImpl) computeAllTime(ctx context.Context, owner string, dateRange DateRange) (AllTimeSummary, error) {
	var (
		grids        map[string]schedule.PersistedGrid
		achievements map[string]achievement.Map
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		grids, err = s.readers.ScheduleWeeks.ListWeeks(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		achievements, err = s.readers.AchievementWeeks.ListWeeks(gctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return AllTimeSummary{}, fmt.Errorf("failed to load all weeks: %w", err)
	}

	weeks := make([]Week, 0, len(grids))
	for weekId, persisted := range grids {
		if err := ctx.Err(); err != nil {
			return AllTimeSummary{}, err
		}
		weekStart, err := calendar_date.ParseString(weekId)
		if err != nil || schedule.StartOfWeek(weekStart) != weekStart {
			log.Warnf("skipping schedule document %q, id is not a week start", weekId)
			continue
		}
		grid := limitToRange(schedule.Repair(persisted, weekStart).Grid, dateRange)
		if len(grid.PlannedSlots()) == 0 {
			continue
		}
		weeks = append(weeks, Week{Grid: grid, Achievements: achievements[weekId]})
	}

	return AllTimeSummary{
		Range: dateRange,
		Hours: AllTimeHours(weeks, preferences.AchievementsOnly),
		Weeks: len(weeks),
	}, nil
}

func limitToRange(grid schedule.WeekGrid, dateRange DateRange) schedule.WeekGrid {
	if dateRange == (DateRange{}) {
		return grid
	}
	for _, slot := range grid.PlannedSlots() {
		if !dateRange.Contains(slot.Slot.Date) {
			grid[slot.Day][slot.Hour] = nil
		}
	}
	return grid
}

func recordedSlots(grid schedule.WeekGrid, achievements achievement.Map) int {
	recorded := 0
	for _, slot := range grid.PlannedSlots() {
		if _, ok := achievements.Lookup(slot.Key()); ok {
			recorded++
		}
	}
	return recorded
}

// categoryStats keeps the order of the category list, unlisted categories follow sorted by id.
func categoryStats(categories []category.Category, minutes map[string]int) []CategoryStats {
	result := make([]CategoryStats, 0, len(minutes))
	listed := make(map[string]bool, len(categories))
	for _, c := range categories {
		listed[c.Id] = true
		result = append(result, CategoryStats{CategoryId: c.Id, Name: c.Name, Color: c.Color, Minutes: minutes[c.Id]})
	}
	var unlisted []string
	for id := range minutes {
		if !listed[id] {
			unlisted = append(unlisted, id)
		}
	}
	sort.Strings(unlisted)
	for _, id := range unlisted {
		result = append(result, CategoryStats{CategoryId: id, Name: id, Minutes: minutes[id]})
	}
	return result
}

// latestWins tracks the running all-time request of every session. Starting a new
// one cancels the previous with ErrSuperseded as cause.
type latestWins struct {
	mu      sync.Mutex
	seq     uint64
	running map[string]runningCall
}

type runningCall struct {
	seq    uint64
	cancel context.CancelCauseFunc
}

func newLatestWins() *latestWins {
	return &latestWins{running: make(map[string]runningCall)}
}

func (l *latestWins) start(ctx context.Context, session string) (context.Context, func()) {
	runCtx, cancel := context.WithCancelCause(ctx)

	l.mu.Lock()
	if previous, ok := l.running[session]; ok {
		previous.cancel(ErrSuperseded)
	}
	l.seq++
	seq := l.seq
	l.running[session] = runningCall{seq: seq, cancel: cancel}
	l.mu.Unlock()

	return runCtx, func() {
		l.mu.Lock()
		if current, ok := l.running[session]; ok && current.seq == seq {
			delete(l.running, session)
		}
		l.mu.Unlock()
		cancel(context.Canceled)
	}
}

// allTimeCache keeps computed totals per session until one of its weeks changes.
// A result computed before an invalidation is not stored.
type allTimeCache struct {
	mu          sync.Mutex
	entries     map[string]map[DateRange]AllTimeSummary
	generations map[string]uint64
}

func newAllTimeCache() *allTimeCache {
	return &allTimeCache{
		entries:     make(map[string]map[DateRange]AllTimeSummary),
		generations: make(map[string]uint64),
	}
}

func (c *allTimeCache) get(session string, dateRange DateRange) (AllTimeSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	summary, ok := c.entries[session][dateRange]
	return summary, ok
}

func (c *allTimeCache) generation(session string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[session]
}

func (c *allTimeCache) put(session string, dateRange DateRange, generation uint64, summary AllTimeSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[session] != generation {
		return
	}
	if c.entries[session] == nil {
		c.entries[session] = make(map[DateRange]AllTimeSummary)
	}
	c.entries[session][dateRange] = summary
}

func (c *allTimeCache) invalidate(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[session]++
	delete(c.entries, session)
}
