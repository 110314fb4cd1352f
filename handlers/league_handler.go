package handlers

import (
	"net/http"

	"github.com/pinclub/pin-engine/middleware"
	"github.com/pinclub/pin-engine/services"
)

type LeagueHandler struct {
	leagueService services.LeagueService
}

func NewLeagueHandler(leagueService services.LeagueService) *LeagueHandler {
	return &LeagueHandler{leagueService: leagueService}
}

// Create handles POST /leagues (admin only).
func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.CreateLeague(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID handles GET /leagues/{leagueID}.
func (h *LeagueHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.GetLeague(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List handles GET /leagues.
func (h *LeagueHandler) List(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.leagueService.ListLeagues(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leagues": leagues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Join handles POST /leagues/{leagueID}/join. The authenticated caller is
// enrolled in the league standings.
func (h *LeagueHandler) Join(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	entry, err := h.leagueService.Join(r.Context(), leagueID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Leaderboard handles GET /leagues/{leagueID}/leaderboard.
func (h *LeagueHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.leagueService.Leaderboard(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
