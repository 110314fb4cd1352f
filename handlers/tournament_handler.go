package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pinclub/pin-engine/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// Create handles POST /tournaments (admin only).
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID handles GET /tournaments/{tournamentID}.
func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByLeague handles GET /leagues/{leagueID}/tournaments.
func (h *TournamentHandler) ListByLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.ListByLeague(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBrackets handles POST /tournaments/{tournamentID}/brackets
// (admin only).
func (h *TournamentHandler) GenerateBrackets(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.tournamentService.GenerateBrackets(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBrackets handles GET /tournaments/{tournamentID}/brackets.
func (h *TournamentHandler) GetBrackets(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.tournamentService.GetBrackets(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResult handles POST /tournaments/{tournamentID}/matches/{matchUID}/result
// (admin only).
func (h *TournamentHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchUID := chi.URLParam(r, "matchUID")
	if matchUID == "" {
		badRequestResponse(w, r, errors.New("invalid match UID"))
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID = id
	input.MatchUID = matchUID

	view, err := h.tournamentService.SubmitMatchResult(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
