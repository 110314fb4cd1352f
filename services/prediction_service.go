package services

import (
	"context"
	"errors"
	"math"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
)

const (
	// headToHeadLimit caps how much shared history feeds the prediction.
	headToHeadLimit = 10

	// maxHeadToHeadSwing is how many percentage points a completely
	// one-sided head-to-head record can move the Elo baseline.
	maxHeadToHeadSwing = 20.0

	// streakClamp bounds how far a hot or cold run counts; each net streak
	// step is worth streakStepPct percentage points.
	streakClamp   = 5
	streakStepPct = 1.5

	highConfidenceGap   = 20.0
	mediumConfidenceGap = 8.0
)

type Favorite string

const (
	FavoritePlayerA Favorite = "player_a"
	FavoritePlayerB Favorite = "player_b"
	FavoriteDraw    Favorite = "draw"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// PredictionSide is one player's half of a prediction.
type PredictionSide struct {
	PlayerID    int     `json:"player_id"`
	DisplayName string  `json:"display_name"`
	Rating      float64 `json:"rating"`
	Probability float64 `json:"probability"`
}

// PredictionFactors exposes the components behind the final probabilities,
// in percentage points from player A's perspective.
type PredictionFactors struct {
	EloProbability  float64 `json:"elo_probability"`
	HeadToHeadDelta float64 `json:"head_to_head_delta"`
	StreakDelta     float64 `json:"streak_delta"`
}

// HeadToHead summarizes the validated shared history the model consumed.
type HeadToHead struct {
	Total int `json:"total"`
	WinsA int `json:"wins_a"`
	WinsB int `json:"wins_b"`
}

// MatchPrediction is the advisory forecast for a hypothetical match. It
// never changes any standing.
type MatchPrediction struct {
	PlayerA    PredictionSide    `json:"player_a"`
	PlayerB    PredictionSide    `json:"player_b"`
	Favorite   Favorite          `json:"favorite"`
	Confidence Confidence        `json:"confidence"`
	Factors    PredictionFactors `json:"factors"`
	Advantages []string          `json:"advantages,omitempty"`
	HeadToHead HeadToHead        `json:"head_to_head"`
}

type PredictionService interface {
	PredictMatch(ctx context.Context, playerAID, playerBID int) (*MatchPrediction, error)
}

type predictionService struct {
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.RapidMatchRepository
}

func NewPredictionService(playerRepo repositories.PlayerRepository, matchRepo repositories.RapidMatchRepository) PredictionService {
	return &predictionService{playerRepo: playerRepo, matchRepo: matchRepo}
}

func (s *predictionService) PredictMatch(ctx context.Context, playerAID, playerBID int) (*MatchPrediction, error) {
	if playerAID == playerBID {
		return nil, ErrInvalidParticipants
	}

	playerA, err := s.loadPlayer(ctx, playerAID)
	if err != nil {
		return nil, err
	}
	playerB, err := s.loadPlayer(ctx, playerBID)
	if err != nil {
		return nil, err
	}

	history, err := s.matchRepo.ListValidatedBetween(ctx, playerAID, playerBID, headToHeadLimit)
	if err != nil {
		return nil, err
	}

	eloPct := EloExpectedScore(playerA.Rating, playerB.Rating) * 100

	h2h, h2hDelta := headToHeadFactor(history, playerAID)
	streakDelta := streakFactor(playerA.Streak, playerB.Streak)

	probA := clamp(eloPct+h2hDelta+streakDelta, 1, 99)
	probB := 100 - probA

	prediction := &MatchPrediction{
		PlayerA: PredictionSide{
			PlayerID:    playerA.ID,
			DisplayName: playerA.DisplayName,
			Rating:      playerA.Rating,
			Probability: round1(probA),
		},
		PlayerB: PredictionSide{
			PlayerID:    playerB.ID,
			DisplayName: playerB.DisplayName,
			Rating:      playerB.Rating,
			Probability: round1(probB),
		},
		Favorite:   favoriteOf(probA),
		Confidence: confidenceOf(probA),
		Factors: PredictionFactors{
			EloProbability:  round1(eloPct),
			HeadToHeadDelta: round1(h2hDelta),
			StreakDelta:     round1(streakDelta),
		},
		Advantages: advantages(playerA, playerB, h2hDelta),
		HeadToHead: h2h,
	}
	return prediction, nil
}

func (s *predictionService) loadPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

// headToHeadFactor weights recent meetings more heavily: the i-th most
// recent match has weight 1/(i+1). The resulting win ratio maps linearly to
// a delta of at most ±maxHeadToHeadSwing.
func headToHeadFactor(history []*models.RapidMatch, playerAID int) (HeadToHead, float64) {
	h2h := HeadToHead{Total: len(history)}
	if len(history) == 0 {
		return h2h, 0
	}

	var weightedWins, totalWeight float64
	for i, match := range history {
		weight := 1.0 / float64(i+1)
		totalWeight += weight
		if match.WinnerID == playerAID {
			h2h.WinsA++
			weightedWins += weight
		} else {
			h2h.WinsB++
		}
	}

	ratio := weightedWins / totalWeight
	return h2h, (ratio - 0.5) * 2 * maxHeadToHeadSwing
}

// streakFactor compares current form. Runs are clamped so one long streak
// cannot drown out the rating difference.
func streakFactor(streakA, streakB int) float64 {
	return float64(clampInt(streakA, -streakClamp, streakClamp)-clampInt(streakB, -streakClamp, streakClamp)) * streakStepPct
}

func favoriteOf(probA float64) Favorite {
	switch {
	case probA > 50:
		return FavoritePlayerA
	case probA < 50:
		return FavoritePlayerB
	default:
		return FavoriteDraw
	}
}

func confidenceOf(probA float64) Confidence {
	gap := math.Abs(probA - 50)
	switch {
	case gap >= highConfidenceGap:
		return ConfidenceHigh
	case gap >= mediumConfidenceGap:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func advantages(playerA, playerB *models.Player, h2hDelta float64) []string {
	out := make([]string, 0, 3)
	switch {
	case playerA.Rating > playerB.Rating:
		out = append(out, playerA.DisplayName+" has the higher rating")
	case playerB.Rating > playerA.Rating:
		out = append(out, playerB.DisplayName+" has the higher rating")
	}
	switch {
	case h2hDelta > 0:
		out = append(out, playerA.DisplayName+" leads the recent head-to-head record")
	case h2hDelta < 0:
		out = append(out, playerB.DisplayName+" leads the recent head-to-head record")
	}
	switch {
	case playerA.Streak > 0 && playerA.Streak > playerB.Streak:
		out = append(out, playerA.DisplayName+" is on a winning streak")
	case playerB.Streak > 0 && playerB.Streak > playerA.Streak:
		out = append(out, playerB.DisplayName+" is on a winning streak")
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
