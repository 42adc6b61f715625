package schedule

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/klokku/studyplan/internal/rest"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/slot_key"
)

type SlotDTO struct {
	Id         string `json:"id"`
	CategoryId string `json:"categoryId"`
	Date       string `json:"date"`
}

// WeekDTO carries every cell of the grid, empty cells as null.
type WeekDTO struct {
	WeekId string                         `json:"weekId"`
	Grid   map[string]map[string]*SlotDTO `json:"grid"`
}

type SetSlotRequest struct {
	Date       string `json:"date"`
	Day        string `json:"day"`
	Hour       string `json:"hour"`
	CategoryId string `json:"categoryId"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetWeek godoc
// @Summary Get the schedule of a week
// @Tags Schedule
// @Produce json
// @Param date query string true "Any day of the week"
// @Success 200 {object} WeekDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Failure 503 {object} rest.ActionResult "Storage unavailable"
// @Router /api/schedule [get]
// @Security XUserId
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	date, err := rest.DateParam(r, "date")
	if err != nil {
		rest.BadRequest(w, "Incorrect date", err.Error())
		return
	}
	grid, err := h.service.GetWeek(r.Context(), date)
	if err != nil {
		rest.Failure(w, err, ErrInvalidSlot)
		return
	}
	rest.WriteJSON(w, http.StatusOK, WeekToDTO(WeekIdentifier(date), grid))
}

// SetSlot godoc
// @Summary Plan a study hour
// @Tags Schedule
// @Accept json
// @Produce json
// @Param slot body SetSlotRequest true "Cell and category"
// @Success 200 {object} SlotDTO
// @Failure 400 {object} rest.ActionResult "Invalid cell or category"
// @Router /api/schedule/slot [put]
// @Security XUserId
func (h *Handler) SetSlot(w http.ResponseWriter, r *http.Request) {
	var req SetSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	date, err := calendar_date.ParseString(req.Date)
	if err != nil {
		rest.BadRequest(w, "Incorrect date", err.Error())
		return
	}
	slot, err := h.service.SetSlot(r.Context(), date, slot_key.DayKey(req.Day), slot_key.HourKey(req.Hour), req.CategoryId)
	if err != nil {
		rest.Failure(w, err, ErrInvalidSlot)
		return
	}
	rest.WriteJSON(w, http.StatusOK, SlotToDTO(&slot))
}

// DeleteSlot godoc
// @Summary Empty a cell
// @Description With cascade=true (default) the achievement of the cell is deleted too.
// @Tags Schedule
// @Produce json
// @Param date query string true "Any day of the week"
// @Param day query string true "day1..day7"
// @Param hour query string true "hour9..hour22"
// @Param cascade query bool false "Delete the achievement of the cell"
// @Success 200 {object} rest.ActionResult
// @Router /api/schedule/slot [delete]
// @Security XUserId
func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	date, err := rest.DateParam(r, "date")
	if err != nil {
		rest.BadRequest(w, "Incorrect date", err.Error())
		return
	}
	query := r.URL.Query()
	day := slot_key.DayKey(query.Get("day"))
	hour := slot_key.HourKey(query.Get("hour"))
	cascade := true
	if value := query.Get("cascade"); value != "" {
		cascade, err = strconv.ParseBool(value)
		if err != nil {
			rest.BadRequest(w, "Incorrect cascade flag", err.Error())
			return
		}
	}

	if cascade {
		_, err = h.service.DeleteSlot(r.Context(), date, day, hour)
	} else {
		_, err = h.service.ClearSlot(r.Context(), date, day, hour)
	}
	if err != nil {
		rest.Failure(w, err, ErrInvalidSlot)
		return
	}
	rest.Success(w, "slot removed")
}

// ResetWeek godoc
// @Summary Empty the whole week and delete its achievements
// @Tags Schedule
// @Produce json
// @Param date query string true "Any day of the week"
// @Success 200 {object} rest.ActionResult
// @Router /api/schedule [delete]
// @Security XUserId
func (h *Handler) ResetWeek(w http.ResponseWriter, r *http.Request) {
	date, err := rest.DateParam(r, "date")
	if err != nil {
		rest.BadRequest(w, "Incorrect date", err.Error())
		return
	}
	if _, err := h.service.ResetWeek(r.Context(), date); err != nil {
		rest.Failure(w, err)
		return
	}
	rest.Success(w, "week reset")
}

func WeekToDTO(weekId string, grid WeekGrid) WeekDTO {
	dto := WeekDTO{WeekId: weekId, Grid: make(map[string]map[string]*SlotDTO, len(grid))}
	for day, hours := range grid {
		dtoHours := make(map[string]*SlotDTO, len(hours))
		for hour, slot := range hours {
			dtoHours[string(hour)] = SlotToDTO(slot)
		}
		dto.Grid[string(day)] = dtoHours
	}
	return dto
}

func SlotToDTO(slot *Slot) *SlotDTO {
	if slot == nil {
		return nil
	}
	return &SlotDTO{
		Id:         slot.Id,
		CategoryId: slot.CategoryId,
		Date:       slot.Date.String(),
	}
}
