package stats

import (
	"errors"
	"net/http"

	"github.com/klokku/studyplan/internal/rest"
	"github.com/klokku/studyplan/pkg/calendar_date"
)

type CategoryStatsDTO struct {
	CategoryId string `json:"categoryId"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	Minutes    int    `json:"minutes"`
}

type GoalProgressDTO struct {
	TargetHours   float64 `json:"targetHours"`
	AchievedHours float64 `json:"achievedHours"`
	Percent       int     `json:"percent"`
}

type WeeklyStatsDTO struct {
	WeekStart      string             `json:"weekStart"`
	Policy         string             `json:"policy"`
	Categories     []CategoryStatsDTO `json:"categories"`
	TotalHours     float64            `json:"totalHours"`
	PlannedSlots   int                `json:"plannedSlots"`
	RecordedSlots  int                `json:"recordedSlots"`
	RecordRate     int                `json:"recordRate"`
	CompletionRate int                `json:"completionRate"`
	Goal           *GoalProgressDTO   `json:"goal,omitempty"`
}

type AllTimeDTO struct {
	From  *calendar_date.CalendarDate `json:"from"`
	To    *calendar_date.CalendarDate `json:"to"`
	Hours float64                     `json:"hours"`
	Weeks int                         `json:"weeks"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer}
}

// GetWeeklyStats godoc
// @Summary Statistics of a week
// @Tags Stats
// @Produce json,text/csv
// @Param date query string true "Any day of the week"
// @Param format query string false "csv for a spreadsheet export"
// @Success 200 {object} WeeklyStatsDTO
// @Router /api/stats/weekly [get]
// @Security XUserId
func (handler *StatsHandler) GetWeeklyStats(w http.ResponseWriter, r *http.Request) {
	date, err := rest.DateParam(r, "date")
	if err != nil {
		rest.BadRequest(w, "Invalid date", err.Error())
		return
	}
	stats, err := handler.statsService.GetWeeklyStats(r.Context(), date)
	if err != nil {
		rest.Failure(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" || r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvStatsRenderer.RenderStats(stats)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, WeeklyStatsToDTO(stats))
}

// GetAllTimeHours godoc
// @Summary Status weighted study hours
// @Description Completed hours count 1.0, partial 0.7. A request overtaken by a newer one gets 409.
// @Tags Stats
// @Produce json
// @Param from query string false "First day, inclusive"
// @Param to query string false "Last day, inclusive"
// @Success 200 {object} AllTimeDTO
// @Failure 409 {object} rest.ActionResult "Superseded"
// @Router /api/stats/alltime [get]
// @Security XUserId
func (handler *StatsHandler) GetAllTimeHours(w http.ResponseWriter, r *http.Request) {
	var dateRange DateRange
	if r.URL.Query().Get("from") != "" {
		from, err := rest.DateParam(r, "from")
		if err != nil {
			rest.BadRequest(w, "Invalid from date", err.Error())
			return
		}
		dateRange.From = from
	}
	if r.URL.Query().Get("to") != "" {
		to, err := rest.DateParam(r, "to")
		if err != nil {
			rest.BadRequest(w, "Invalid to date", err.Error())
			return
		}
		dateRange.To = to
	}

	summary, err := handler.statsService.GetAllTimeHours(r.Context(), dateRange)
	if errors.Is(err, ErrSuperseded) {
		rest.WriteJSON(w, http.StatusConflict, rest.ActionResult{Success: false, Message: err.Error()})
		return
	}
	if err != nil {
		rest.Failure(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, AllTimeToDTO(summary))
}

func WeeklyStatsToDTO(stats WeeklyStats) WeeklyStatsDTO {
	categories := make([]CategoryStatsDTO, 0, len(stats.Categories))
	for _, c := range stats.Categories {
		categories = append(categories, CategoryStatsDTO{
			CategoryId: c.CategoryId,
			Name:       c.Name,
			Color:      c.Color,
			Minutes:    c.Minutes,
		})
	}
	dto := WeeklyStatsDTO{
		WeekStart:      stats.WeekStart.String(),
		Policy:         stats.Policy.Name(),
		Categories:     categories,
		TotalHours:     stats.TotalHours,
		PlannedSlots:   stats.PlannedSlots,
		RecordedSlots:  stats.RecordedSlots,
		RecordRate:     stats.RecordRate,
		CompletionRate: stats.CompletionRate,
	}
	if stats.Goal != nil {
		dto.Goal = &GoalProgressDTO{
			TargetHours:   stats.Goal.TargetHours.InexactFloat64(),
			AchievedHours: stats.Goal.AchievedHours.InexactFloat64(),
			Percent:       stats.Goal.Percent,
		}
	}
	return dto
}

func AllTimeToDTO(summary AllTimeSummary) AllTimeDTO {
	dto := AllTimeDTO{
		Hours: summary.Hours.InexactFloat64(),
		Weeks: summary.Weeks,
	}
	if !summary.Range.From.IsZero() {
		dto.From = &summary.Range.From
	}
	if !summary.Range.To.IsZero() {
		dto.To = &summary.Range.To
	}
	return dto
}
