package milestone

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/studyplan/internal/rest"
)

type NextDTO struct {
	Hours     float64 `json:"hours"`
	Milestone *Entry  `json:"milestone"`
}

type CollectionItemDTO struct {
	Entry
	Unlocked bool `json:"unlocked"`
	Shown    bool `json:"shown"`
}

type CollectionDTO struct {
	Hours float64             `json:"hours"`
	Items []CollectionItemDTO `json:"items"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Next godoc
// @Summary The milestone to present now
// @Description milestone is null when nothing new was reached.
// @Tags Milestone
// @Produce json
// @Success 200 {object} NextDTO
// @Router /api/milestone/next [get]
// @Security XUserId
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	entry, hours, err := h.service.Next(r.Context())
	if err != nil {
		rest.Failure(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, NextDTO{Hours: hours.InexactFloat64(), Milestone: entry})
}

// MarkShown godoc
// @Summary Record that a milestone was presented
// @Tags Milestone
// @Produce json
// @Param id path string true "Milestone id"
// @Success 200 {object} rest.ActionResult
// @Failure 400 {object} rest.ActionResult "Unknown milestone"
// @Router /api/milestone/{id}/shown [post]
// @Security XUserId
func (h *Handler) MarkShown(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.MarkShown(r.Context(), id); err != nil {
		rest.Failure(w, err, ErrUnknownMilestone)
		return
	}
	rest.Success(w, "milestone marked as shown")
}

// Collection godoc
// @Summary All milestones with their unlock state
// @Tags Milestone
// @Produce json
// @Success 200 {object} CollectionDTO
// @Router /api/milestone/collection [get]
// @Security XUserId
func (h *Handler) Collection(w http.ResponseWriter, r *http.Request) {
	items, hours, err := h.service.Collection(r.Context())
	if err != nil {
		rest.Failure(w, err)
		return
	}
	dto := CollectionDTO{Hours: hours.InexactFloat64(), Items: make([]CollectionItemDTO, 0, len(items))}
	for _, item := range items {
		dto.Items = append(dto.Items, CollectionItemDTO{Entry: item.Entry, Unlocked: item.Unlocked, Shown: item.Shown})
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}
