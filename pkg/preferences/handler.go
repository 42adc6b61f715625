package preferences

import (
	"encoding/json"
	"net/http"

	"github.com/klokku/studyplan/internal/rest"
)

type InclusionPolicyDTO struct {
	AchievementsOnly bool   `json:"achievementsOnly"`
	Name             string `json:"name"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetInclusionPolicy godoc
// @Summary Get the inclusion policy used by statistics
// @Tags Preferences
// @Produce json
// @Success 200 {object} InclusionPolicyDTO
// @Router /api/preferences/inclusion-policy [get]
// @Security XUserId
func (h *Handler) GetInclusionPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.service.GetInclusionPolicy(r.Context())
	if err != nil {
		rest.Failure(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, InclusionPolicyDTO{AchievementsOnly: bool(policy), Name: policy.Name()})
}

// SetInclusionPolicy godoc
// @Summary Change the inclusion policy
// @Tags Preferences
// @Accept json
// @Produce json
// @Param policy body InclusionPolicyDTO true "achievementsOnly flag"
// @Success 200 {object} rest.ActionResult
// @Router /api/preferences/inclusion-policy [put]
// @Security XUserId
func (h *Handler) SetInclusionPolicy(w http.ResponseWriter, r *http.Request) {
	var dto InclusionPolicyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	if err := h.service.SetInclusionPolicy(r.Context(), InclusionPolicy(dto.AchievementsOnly)); err != nil {
		rest.Failure(w, err)
		return
	}
	rest.Success(w, "inclusion policy saved")
}
