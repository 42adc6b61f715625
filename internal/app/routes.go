package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Schedule
	r.HandleFunc("/api/schedule", deps.ScheduleHandler.GetWeek).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/schedule", deps.ScheduleHandler.ResetWeek).Queries("date", "{date}").Methods("DELETE")
	r.HandleFunc("/api/schedule/slot", deps.ScheduleHandler.SetSlot).Methods("PUT")
	r.HandleFunc("/api/schedule/slot", deps.ScheduleHandler.DeleteSlot).Queries("date", "{date}", "day", "{day}", "hour", "{hour}").Methods("DELETE")

	// Achievements
	r.HandleFunc("/api/achievement", deps.AchievementHandler.GetWeek).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/achievement", deps.AchievementHandler.Save).Methods("PUT")
	r.HandleFunc("/api/achievement", deps.AchievementHandler.Delete).Queries("date", "{date}", "day", "{day}", "hour", "{hour}").Methods("DELETE")

	// Stats
	r.HandleFunc("/api/stats/weekly", deps.StatsHandler.GetWeeklyStats).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/stats/alltime", deps.StatsHandler.GetAllTimeHours).Methods("GET")

	// Milestones
	r.HandleFunc("/api/milestone/next", deps.MilestoneHandler.Next).Methods("GET")
	r.HandleFunc("/api/milestone/collection", deps.MilestoneHandler.Collection).Methods("GET")
	r.HandleFunc("/api/milestone/{id}/shown", deps.MilestoneHandler.MarkShown).Methods("POST")

	// Settings
	r.HandleFunc("/api/preferences/inclusion-policy", deps.PreferencesHandler.GetInclusionPolicy).Methods("GET")
	r.HandleFunc("/api/preferences/inclusion-policy", deps.PreferencesHandler.SetInclusionPolicy).Methods("PUT")
	r.HandleFunc("/api/weeklygoal", deps.WeeklyGoalHandler.Get).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/weeklygoal", deps.WeeklyGoalHandler.Set).Queries("date", "{date}").Methods("PUT")
	r.HandleFunc("/api/category", deps.CategoryHandler.List).Methods("GET")
	r.HandleFunc("/api/category", deps.CategoryHandler.Replace).Methods("PUT")
}
