package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinclub/pin-engine/models"
)

func TestEloExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, EloExpectedScore(1000, 1000), 0.0001)
	// 400 points of rating is 10:1 odds in the standard model.
	assert.InDelta(t, 10.0/11.0, EloExpectedScore(1400, 1000), 0.0001)
	assert.InDelta(t, 1.0/11.0, EloExpectedScore(1000, 1400), 0.0001)
}

func TestApplyOutcomeEloTransfersRating(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	winner := e.addPlayer(t, "ana")
	loser := e.addPlayer(t, "bruno")
	scope := models.LeagueScope(1)
	table := models.ScoringTable{Victory: 3, Defeat: 1}

	err := e.ranking.ApplyOutcome(ctx, nil, scope, models.ScoringElo, MatchOutcome{
		WinnerID: winner.ID,
		LoserID:  loser.ID,
		Table:    table,
	})
	require.NoError(t, err)

	entries, err := e.ranking.Leaderboard(ctx, scope)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Equal ratings move by exactly half the K factor.
	assert.InDelta(t, InitialRating+16, entries[0].Rating, 0.001)
	assert.InDelta(t, InitialRating-16, entries[1].Rating, 0.001)
	assert.Equal(t, 3, entries[0].Points)
	assert.Equal(t, 1, entries[1].Points)

	// Global aggregates follow the scope entry.
	assert.InDelta(t, InitialRating+16, e.reloadPlayer(t, winner.ID).Rating, 0.001)
	assert.InDelta(t, InitialRating-16, e.reloadPlayer(t, loser.ID).Rating, 0.001)

	// The winner was the underdog for the rematch, so beating the now
	// stronger opponent is worth more than 16.
	err = e.ranking.ApplyOutcome(ctx, nil, scope, models.ScoringElo, MatchOutcome{
		WinnerID: loser.ID,
		LoserID:  winner.ID,
		Table:    table,
	})
	require.NoError(t, err)
	assert.Greater(t, e.reloadPlayer(t, loser.ID).Rating, InitialRating)
}

func TestApplyOutcomeSimpleKeepsRating(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	winner := e.addPlayer(t, "ana")
	loser := e.addPlayer(t, "bruno")
	scope := models.LeagueScope(1)

	err := e.ranking.ApplyOutcome(ctx, nil, scope, models.ScoringSimple, MatchOutcome{
		WinnerID: winner.ID,
		LoserID:  loser.ID,
		Table:    models.ScoringTable{Victory: 3, Defeat: 1},
	})
	require.NoError(t, err)

	entries, err := e.ranking.Leaderboard(ctx, scope)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.InDelta(t, InitialRating, entries[0].Rating, 0.001)
	assert.InDelta(t, InitialRating, entries[1].Rating, 0.001)
	assert.Equal(t, 3, entries[0].Points)
	assert.InDelta(t, InitialRating, e.reloadPlayer(t, winner.ID).Rating, 0.001)
}

func TestApplyOutcomeUnknownPlayer(t *testing.T) {
	e := newEnv(t)
	winner := e.addPlayer(t, "ana")

	err := e.ranking.ApplyOutcome(context.Background(), nil, models.LeagueScope(1), models.ScoringSimple, MatchOutcome{
		WinnerID: winner.ID,
		LoserID:  404,
		Table:    models.ScoringTable{Victory: 3},
	})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestEnrollIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	player := e.addPlayer(t, "ana")
	scope := models.LeagueScope(7)

	first, err := e.ranking.Enroll(ctx, scope, player.ID)
	require.NoError(t, err)
	assert.InDelta(t, InitialRating, first.Rating, 0.001)

	second, err := e.ranking.Enroll(ctx, scope, player.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	entries, err := e.ranking.Leaderboard(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = e.ranking.Enroll(ctx, scope, 404)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestLeaderboardOrderingAndPositions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.addPlayer(t, "ana")
	bruno := e.addPlayer(t, "bruno")
	carla := e.addPlayer(t, "carla")
	scope := models.SeasonScope(1)
	table := models.ScoringTable{Victory: 3, Defeat: 1}

	play := func(winnerID, loserID int) {
		t.Helper()
		err := e.ranking.ApplyOutcome(ctx, nil, scope, models.ScoringSimple, MatchOutcome{
			WinnerID: winnerID,
			LoserID:  loserID,
			Table:    table,
		})
		require.NoError(t, err)
	}

	play(ana.ID, bruno.ID)
	play(ana.ID, carla.ID)
	play(bruno.ID, carla.ID)

	entries, err := e.ranking.Leaderboard(ctx, scope)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// ana 6 points, bruno 4, carla 2; positions persist.
	assert.Equal(t, []int{ana.ID, bruno.ID, carla.ID}, []int{entries[0].PlayerID, entries[1].PlayerID, entries[2].PlayerID})
	assert.Equal(t, []int{6, 4, 2}, []int{entries[0].Points, entries[1].Points, entries[2].Points})
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Position)
	}

}

func TestLeaderboardBreaksPointTiesByLosses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.addPlayer(t, "ana")
	bruno := e.addPlayer(t, "bruno")
	carla := e.addPlayer(t, "carla")
	dmitri := e.addPlayer(t, "dmitri")
	scope := models.SeasonScope(1)
	table := models.ScoringTable{Victory: 3, Defeat: 1}

	play := func(winnerID, loserID int) {
		t.Helper()
		err := e.ranking.ApplyOutcome(ctx, nil, scope, models.ScoringSimple, MatchOutcome{
			WinnerID: winnerID,
			LoserID:  loserID,
			Table:    table,
		})
		require.NoError(t, err)
	}

	// ana: one win, 3 points, no losses. carla: three defeats, 3 points.
	play(ana.ID, bruno.ID)
	play(dmitri.ID, carla.ID)
	play(dmitri.ID, carla.ID)
	play(dmitri.ID, carla.ID)

	entries, err := e.ranking.Leaderboard(ctx, scope)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, dmitri.ID, entries[0].PlayerID)
	assert.Equal(t, entries[1].Points, entries[2].Points)
	assert.Equal(t, ana.ID, entries[1].PlayerID)
	assert.Equal(t, carla.ID, entries[2].PlayerID)
	assert.Less(t, entries[1].Losses, entries[2].Losses)
	assert.Equal(t, bruno.ID, entries[3].PlayerID)
}

func TestContinueStreak(t *testing.T) {
	tests := []struct {
		name   string
		streak int
		won    bool
		want   int
	}{
		{"first win", 0, true, 1},
		{"first loss", 0, false, -1},
		{"extend winning run", 3, true, 4},
		{"extend losing run", -2, false, -3},
		{"win breaks losing run", -4, true, 1},
		{"loss breaks winning run", 5, false, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, continueStreak(tt.streak, tt.won))
		})
	}
}
