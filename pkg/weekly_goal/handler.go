package weekly_goal

import (
	"encoding/json"
	"net/http"

	"github.com/klokku/studyplan/internal/rest"
	"github.com/shopspring/decimal"
)

type GoalDTO struct {
	WeekId      string  `json:"weekId"`
	TargetHours float64 `json:"targetHours"`
	Set         bool    `json:"set"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Get godoc
// @Summary Get the study goal of a week
// @Tags WeeklyGoal
// @Produce json
// @Param date query string true "Any day of the week"
// @Success 200 {object} GoalDTO
// @Router /api/weeklygoal [get]
// @Security XUserId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	date, err := rest.DateParam(r, "date")
	if err != nil {
		rest.BadRequest(w, "Incorrect date", err.Error())
		return
	}
	goal, found, err := h.service.Get(r.Context(), date)
	if err != nil {
		rest.Failure(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, GoalToDTO(goal, found))
}

// Set godoc
// @Summary Set the study goal of a week
// @Tags WeeklyGoal
// @Accept json
// @Produce json
// @Param date query string true "Any day of the week"
// @Param goal body object{targetHours=number} true "Target hours"
// @Success 200 {object} GoalDTO
// @Router /api/weeklygoal [put]
// @Security XUserId
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	date, err := rest.DateParam(r, "date")
	if err != nil {
		rest.BadRequest(w, "Incorrect date", err.Error())
		return
	}
	var body struct {
		TargetHours decimal.Decimal `json:"targetHours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	goal, err := h.service.Set(r.Context(), date, body.TargetHours)
	if err != nil {
		rest.Failure(w, err, ErrInvalidGoal)
		return
	}
	rest.WriteJSON(w, http.StatusOK, GoalToDTO(goal, true))
}

func GoalToDTO(goal Goal, set bool) GoalDTO {
	return GoalDTO{WeekId: goal.WeekId, TargetHours: goal.TargetHours.InexactFloat64(), Set: set}
}
