package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setAggregates writes global rating and streak directly, bypassing match
// play, to stage prediction inputs.
func (e *env) setAggregates(t *testing.T, playerID int, rating float64, streak int) {
	t.Helper()
	player := e.reloadPlayer(t, playerID)
	player.Rating = rating
	player.Streak = streak
	require.NoError(t, e.store.UpdateAggregates(context.Background(), nil, player))
}

func TestPredictEqualPlayersIsADraw(t *testing.T) {
	e := newEnv(t)
	ana := e.addPlayer(t, "ana")
	bruno := e.addPlayer(t, "bruno")

	p, err := e.predictions.PredictMatch(context.Background(), ana.ID, bruno.ID)
	require.NoError(t, err)

	assert.InDelta(t, 50.0, p.PlayerA.Probability, 0.001)
	assert.InDelta(t, 50.0, p.PlayerB.Probability, 0.001)
	assert.Equal(t, FavoriteDraw, p.Favorite)
	assert.Equal(t, ConfidenceLow, p.Confidence)
	assert.Empty(t, p.Advantages)
	assert.Equal(t, HeadToHead{}, p.HeadToHead)
}

func TestPredictRatingGap(t *testing.T) {
	e := newEnv(t)
	ana := e.addPlayer(t, "ana")
	bruno := e.addPlayer(t, "bruno")
	e.setAggregates(t, ana.ID, 1200, 0)

	p, err := e.predictions.PredictMatch(context.Background(), ana.ID, bruno.ID)
	require.NoError(t, err)

	assert.Equal(t, FavoritePlayerA, p.Favorite)
	assert.Equal(t, ConfidenceHigh, p.Confidence)
	assert.InDelta(t, 76.0, p.PlayerA.Probability, 0.1)
	assert.InDelta(t, 100.0, p.PlayerA.Probability+p.PlayerB.Probability, 0.001)
	assert.Contains(t, p.Advantages, "ana has the higher rating")

	// The same pairing from the other side mirrors the forecast.
	flipped, err := e.predictions.PredictMatch(context.Background(), bruno.ID, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, FavoritePlayerB, flipped.Favorite)
	assert.InDelta(t, p.PlayerA.Probability, flipped.PlayerB.Probability, 0.001)
}

func TestPredictProbabilityIsClamped(t *testing.T) {
	e := newEnv(t)
	ana := e.addPlayer(t, "ana")
	bruno := e.addPlayer(t, "bruno")
	e.setAggregates(t, ana.ID, 2000, 5)

	p, err := e.predictions.PredictMatch(context.Background(), ana.ID, bruno.ID)
	require.NoError(t, err)
	assert.InDelta(t, 99.0, p.PlayerA.Probability, 0.001)
	assert.InDelta(t, 1.0, p.PlayerB.Probability, 0.001)
}

func TestPredictHeadToHeadHistory(t *testing.T) {
	e := newEnv(t)
	season := e.addSeason(t, "Autumn")
	ana := e.addPlayer(t, "ana")
	bruno := e.addPlayer(t, "bruno")
	carla := e.addPlayer(t, "carla")

	e.playRapid(t, season.ID, ana, bruno, carla)
	e.playRapid(t, season.ID, ana, bruno, carla)
	// A match against a third player stays out of the pairwise record.
	e.playRapid(t, season.ID, ana, carla, bruno)

	p, err := e.predictions.PredictMatch(context.Background(), ana.ID, bruno.ID)
	require.NoError(t, err)

	assert.Equal(t, HeadToHead{Total: 2, WinsA: 2, WinsB: 0}, p.HeadToHead)
	assert.Greater(t, p.Factors.HeadToHeadDelta, 0.0)
	assert.Equal(t, FavoritePlayerA, p.Favorite)
	assert.Contains(t, p.Advantages, "ana leads the recent head-to-head record")
	// Rapid play never moved the ratings, so the Elo baseline stays even.
	assert.InDelta(t, 50.0, p.Factors.EloProbability, 0.001)
}

func TestPredictStreaksAreClamped(t *testing.T) {
	e := newEnv(t)
	ana := e.addPlayer(t, "ana")
	bruno := e.addPlayer(t, "bruno")
	e.setAggregates(t, ana.ID, InitialRating, 12)
	e.setAggregates(t, bruno.ID, InitialRating, -9)

	p, err := e.predictions.PredictMatch(context.Background(), ana.ID, bruno.ID)
	require.NoError(t, err)

	// Both runs clamp to 5, a net 10 steps at 1.5 points each.
	assert.InDelta(t, 15.0, p.Factors.StreakDelta, 0.001)
	assert.InDelta(t, 65.0, p.PlayerA.Probability, 0.001)
	assert.Equal(t, ConfidenceMedium, p.Confidence)
	assert.Contains(t, p.Advantages, "ana is on a winning streak")
}

func TestPredictValidation(t *testing.T) {
	e := newEnv(t)
	ana := e.addPlayer(t, "ana")

	_, err := e.predictions.PredictMatch(context.Background(), ana.ID, ana.ID)
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	_, err = e.predictions.PredictMatch(context.Background(), ana.ID, 404)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
