package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pinclub/pin-engine/middleware"
	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/services"
)

type RapidMatchHandler struct {
	matchService services.RapidMatchService
}

func NewRapidMatchHandler(matchService services.RapidMatchService) *RapidMatchHandler {
	return &RapidMatchHandler{matchService: matchService}
}

// Register handles POST /matches. The authenticated caller becomes the
// registrant and must be one of the three participants.
func (h *RapidMatchHandler) Register(w http.ResponseWriter, r *http.Request) {
	registrantID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.RegisterMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.RegistrantID = registrantID

	match, err := h.matchService.RegisterMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Confirm handles POST /matches/{matchID}/confirm. The authenticated caller
// is the confirmer.
func (h *RapidMatchHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	confirmerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid match ID"))
		return
	}

	match, err := h.matchService.ConfirmMatch(r.Context(), matchID, confirmerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID handles GET /matches/{matchID}.
func (h *RapidMatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid match ID"))
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListBySeason handles GET /seasons/{seasonID}/matches?state=pending.
func (h *RapidMatchHandler) ListBySeason(w http.ResponseWriter, r *http.Request) {
	seasonID, err := urlParamInt(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var state *models.RapidMatchState
	if raw := r.URL.Query().Get("state"); raw != "" {
		s := models.RapidMatchState(raw)
		if s != models.RapidMatchPending && s != models.RapidMatchValidated {
			badRequestResponse(w, r, errors.New("state must be pending or validated"))
			return
		}
		state = &s
	}

	matches, err := h.matchService.ListBySeason(r.Context(), seasonID, state)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PendingForMe handles GET /matches/pending: matches awaiting the caller's
// confirmation or registered by them.
func (h *RapidMatchHandler) PendingForMe(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	matches, err := h.matchService.PendingForParticipant(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
