package achievement

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/klokku/studyplan/internal/rest"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/slot_key"
)

type RecordDTO struct {
	Key       string    `json:"key"`
	Id        string    `json:"id"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment"`
	DayKey    string    `json:"dayKey"`
	HourKey   string    `json:"hourKey"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

type SaveRequest struct {
	Date    string `json:"date"`
	Day     string `json:"day"`
	Hour    string `json:"hour"`
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetWeek godoc
// @Summary Get the achievements of a week
// @Tags Achievement
// @Produce json
// @Param date query string true "Any day of the week"
// @Success 200 {array} RecordDTO
// @Router /api/achievement [get]
// @Security XUserId
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	date, err := rest.DateParam(r, "date")
	if err != nil {
		rest.BadRequest(w, "Incorrect date", err.Error())
		return
	}
	m, err := h.service.GetWeek(r.Context(), date)
	if err != nil {
		rest.Failure(w, err)
		return
	}
	records := make([]RecordDTO, 0, len(m))
	for key, record := range m {
		records = append(records, RecordToDTO(key, record))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	rest.WriteJSON(w, http.StatusOK, records)
}

// Save godoc
// @Summary Record the achievement of a planned hour
// @Tags Achievement
// @Accept json
// @Produce json
// @Param achievement body SaveRequest true "Cell, status and comment"
// @Success 200 {object} RecordDTO
// @Failure 400 {object} rest.ActionResult "Invalid cell or status"
// @Failure 503 {object} rest.ActionResult "Storage unavailable"
// @Router /api/achievement [put]
// @Security XUserId
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	date, err := calendar_date.ParseString(req.Date)
	if err != nil {
		rest.BadRequest(w, "Incorrect date", err.Error())
		return
	}
	record, err := h.service.Save(r.Context(), date, slot_key.DayKey(req.Day), slot_key.HourKey(req.Hour), Status(req.Status), req.Comment)
	if err != nil {
		rest.Failure(w, err, ErrInvalidStatus, ErrInvalidCell)
		return
	}
	rest.WriteJSON(w, http.StatusOK, RecordToDTO(record.Key(), record))
}

// Delete godoc
// @Summary Delete the achievement of a cell
// @Tags Achievement
// @Produce json
// @Param date query string true "Any day of the week"
// @Param day query string true "day1..day7"
// @Param hour query string true "hour9..hour22"
// @Success 200 {object} rest.ActionResult
// @Router /api/achievement [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	date, err := rest.DateParam(r, "date")
	if err != nil {
		rest.BadRequest(w, "Incorrect date", err.Error())
		return
	}
	day := slot_key.DayKey(r.URL.Query().Get("day"))
	hour := slot_key.HourKey(r.URL.Query().Get("hour"))
	if err := h.service.Delete(r.Context(), date, day, hour); err != nil {
		rest.Failure(w, err, ErrInvalidCell)
		return
	}
	rest.Success(w, "achievement deleted")
}

func RecordToDTO(key slot_key.CompositeKey, record Record) RecordDTO {
	return RecordDTO{
		Key:       key.String(),
		Id:        record.Id,
		Status:    string(record.Status),
		Comment:   record.Comment,
		DayKey:    string(record.DayKey),
		HourKey:   string(record.HourKey),
		Date:      record.Date.String(),
		CreatedAt: record.CreatedAt,
	}
}
