package category

import (
	"encoding/json"
	"net/http"

	"github.com/klokku/studyplan/internal/rest"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List study categories
// @Tags Category
// @Produce json
// @Success 200 {array} Category
// @Router /api/category [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		rest.Failure(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, categories)
}

// Replace godoc
// @Summary Replace the category list
// @Tags Category
// @Accept json
// @Produce json
// @Param categories body []Category true "All categories"
// @Success 200 {array} Category
// @Failure 400 {object} rest.ActionResult "Missing or duplicate id"
// @Router /api/category [put]
// @Security XUserId
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var categories []Category
	if err := json.NewDecoder(r.Body).Decode(&categories); err != nil {
		rest.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	stored, err := h.service.Replace(r.Context(), categories)
	if err != nil {
		rest.Failure(w, err, ErrInvalidCategory)
		return
	}
	rest.WriteJSON(w, http.StatusOK, stored)
}
