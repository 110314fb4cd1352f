package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/services"
)

const maxIconSize = 2 << 20 // 2MB

type BadgeHandler struct {
	badgeService services.BadgeService
}

func NewBadgeHandler(badgeService services.BadgeService) *BadgeHandler {
	return &BadgeHandler{badgeService: badgeService}
}

// RewardTable handles GET /rewards.
func (h *BadgeHandler) RewardTable(w http.ResponseWriter, r *http.Request) {
	table := h.badgeService.RewardTable()
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rewards": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadIcon handles POST /rewards/{role}/{tier}/icon (admin only), a
// multipart form with an "icon" file.
func (h *BadgeHandler) UploadIcon(w http.ResponseWriter, r *http.Request) {
	role := models.ResultRole(chi.URLParam(r, "role"))
	tier := models.TierName(chi.URLParam(r, "tier"))

	if err := r.ParseMultipartForm(maxIconSize); err != nil {
		badRequestResponse(w, r, errors.New("could not parse multipart form"))
		return
	}
	file, header, err := r.FormFile("icon")
	if err != nil {
		badRequestResponse(w, r, errors.New("icon file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := h.badgeService.UploadIcon(r.Context(), role, tier, header.Filename, contentType, file)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"icon_url": url}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
