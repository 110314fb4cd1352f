package handlers

import (
	"net/http"

	"github.com/pinclub/pin-engine/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// GetByID handles GET /players/{playerID}.
func (h *PlayerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetPlayer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List handles GET /players.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.ListPlayers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
