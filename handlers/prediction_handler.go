package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pinclub/pin-engine/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(predictionService services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService}
}

// Predict handles GET /predictions?player_a=1&player_b=2. The forecast is
// advisory and never touches any standing.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	playerA, errA := strconv.Atoi(r.URL.Query().Get("player_a"))
	playerB, errB := strconv.Atoi(r.URL.Query().Get("player_b"))
	if errA != nil || errB != nil || playerA <= 0 || playerB <= 0 {
		badRequestResponse(w, r, errors.New("player_a and player_b query parameters are required"))
		return
	}

	prediction, err := h.predictionService.PredictMatch(r.Context(), playerA, playerB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"prediction": prediction}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
