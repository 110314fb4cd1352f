package handlers

import (
	"net/http"

	"github.com/pinclub/pin-engine/services"
)

type SeasonHandler struct {
	seasonService services.SeasonService
}

func NewSeasonHandler(seasonService services.SeasonService) *SeasonHandler {
	return &SeasonHandler{seasonService: seasonService}
}

// Create handles POST /seasons (admin only).
func (h *SeasonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateSeasonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.CreateSeason(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID handles GET /seasons/{seasonID}.
func (h *SeasonHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.GetSeason(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List handles GET /seasons.
func (h *SeasonHandler) List(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.seasonService.ListSeasons(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seasons": seasons}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Leaderboard handles GET /seasons/{seasonID}/leaderboard.
func (h *SeasonHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.seasonService.Leaderboard(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Close handles POST /seasons/{seasonID}/close (admin only).
func (h *SeasonHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.seasonService.CloseSeason(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetCloseResult handles GET /seasons/{seasonID}/result.
func (h *SeasonHandler) GetCloseResult(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.seasonService.GetCloseResult(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
