package app

import (
	"github.com/klokku/studyplan/internal/config"
	"github.com/klokku/studyplan/internal/event_bus"
	"github.com/klokku/studyplan/internal/utils"
	"github.com/klokku/studyplan/internal/week_lock"
	"github.com/klokku/studyplan/pkg/achievement"
	"github.com/klokku/studyplan/pkg/category"
	"github.com/klokku/studyplan/pkg/milestone"
	"github.com/klokku/studyplan/pkg/preferences"
	"github.com/klokku/studyplan/pkg/schedule"
	"github.com/klokku/studyplan/pkg/stats"
	"github.com/klokku/studyplan/pkg/weekly_goal"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Locker   *week_lock.Locker
	Clock    utils.Clock

	CategoryService *category.ServiceImpl
	CategoryHandler *category.Handler

	PreferencesService *preferences.ServiceImpl
	PreferencesHandler *preferences.Handler

	WeeklyGoalService *weekly_goal.ServiceImpl
	WeeklyGoalHandler *weekly_goal.Handler

	AchievementRepo    *achievement.RepositoryImpl
	AchievementService *achievement.ServiceImpl
	AchievementHandler *achievement.Handler

	ScheduleRepo    *schedule.RepositoryImpl
	ScheduleService *schedule.ServiceImpl
	ScheduleHandler *schedule.Handler

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	ShownStore       *milestone.ShownStore
	MilestoneService *milestone.ServiceImpl
	MilestoneHandler *milestone.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(stores *Stores, catalog milestone.Catalog, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Locker = week_lock.NewLocker()
	deps.Clock = &utils.SystemClock{}

	deps.CategoryService = category.NewService(stores.Documents)
	deps.CategoryHandler = category.NewHandler(deps.CategoryService)

	deps.PreferencesService = preferences.NewService(stores.Documents, preferences.InclusionPolicy(cfg.Preferences.AchievementsOnly))
	deps.PreferencesHandler = preferences.NewHandler(deps.PreferencesService)

	deps.WeeklyGoalService = weekly_goal.NewService(stores.Documents)
	deps.WeeklyGoalHandler = weekly_goal.NewHandler(deps.WeeklyGoalService)

	deps.AchievementRepo = achievement.NewRepository(stores.Documents)
	deps.AchievementService = achievement.NewService(deps.AchievementRepo, deps.Locker, deps.EventBus, deps.Clock)
	deps.AchievementHandler = achievement.NewHandler(deps.AchievementService)

	deps.ScheduleRepo = schedule.NewRepository(stores.Documents)
	deps.ScheduleService = schedule.NewService(deps.ScheduleRepo, deps.AchievementRepo, deps.Locker, deps.EventBus)
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService)

	deps.StatsService = stats.NewStatsServiceImpl(stats.Readers{
		Schedules:        deps.ScheduleService,
		Achievements:     deps.AchievementService,
		Categories:       deps.CategoryService,
		Policy:           deps.PreferencesService,
		Goals:            deps.WeeklyGoalService,
		ScheduleWeeks:    deps.ScheduleRepo,
		AchievementWeeks: deps.AchievementRepo,
	}, deps.EventBus)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	deps.ShownStore = milestone.NewShownStore(stores.Documents, stores.Mirror)
	deps.MilestoneService = milestone.NewService(catalog, deps.StatsService, deps.ShownStore)
	deps.MilestoneHandler = milestone.NewHandler(deps.MilestoneService)

	return deps
}
