package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinclub/pin-engine/models"
)

func TestCloseSeasonComputesStandings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")
	ref := e.addPlayer(t, "dmitri")

	// ana 2-0, bruno 1-1, carla 0-2; dmitri referees everything.
	e.playRapid(t, season.ID, a, b, ref)
	e.playRapid(t, season.ID, a, c, ref)
	e.playRapid(t, season.ID, b, c, ref)

	result, err := e.seasons.CloseSeason(ctx, season.ID)
	require.NoError(t, err)
	assert.Equal(t, season.ID, result.SeasonID)
	assert.Equal(t, 3, result.TotalMatches)
	assert.False(t, result.ClosedAt.IsZero())

	// Players: ana 6, bruno 4, carla 2. The referee never played, so he
	// does not appear in the player standings.
	require.Len(t, result.PlayerResults, 3)
	first := result.PlayerResults[0]
	assert.Equal(t, a.ID, first.PlayerID)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 6, first.Points)
	assert.Equal(t, models.TierChampion, first.Tier)
	assert.Equal(t, 500, first.Bonus)
	require.NotNil(t, first.Badge)
	assert.Equal(t, models.RarityLegendary, first.Badge.Rarity)
	assert.Equal(t, models.ResultRolePlayer, first.Role)

	second := result.PlayerResults[1]
	assert.Equal(t, b.ID, second.PlayerID)
	assert.Equal(t, 4, second.Points)
	assert.Equal(t, models.TierTop3, second.Tier)
	assert.Equal(t, 250, second.Bonus)

	third := result.PlayerResults[2]
	assert.Equal(t, c.ID, third.PlayerID)
	assert.Equal(t, models.TierTop3, third.Tier)

	require.Len(t, result.RefereeResults, 1)
	top := result.RefereeResults[0]
	assert.Equal(t, ref.ID, top.PlayerID)
	assert.Equal(t, 1, top.Position)
	assert.Equal(t, 6, top.Points)
	assert.Equal(t, models.TierChampion, top.Tier)
	assert.Equal(t, 200, top.Bonus)
	assert.Equal(t, models.ResultRoleReferee, top.Role)

	closed, err := e.seasons.GetSeason(ctx, season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonClosed, closed.State)
}

func TestCloseSeasonIsTerminal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")

	first, err := e.seasons.CloseSeason(ctx, season.ID)
	require.NoError(t, err)

	_, err = e.seasons.CloseSeason(ctx, season.ID)
	assert.ErrorIs(t, err, ErrSeasonAlreadyClosed)

	// The stored result is the one from the winning close.
	stored, err := e.seasons.GetCloseResult(ctx, season.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ClosedAt.UTC(), stored.ClosedAt.UTC())
}

func TestGetCloseResultBeforeClose(t *testing.T) {
	e := newEnv(t)
	season := e.addSeason(t, "Fall 2026")

	_, err := e.seasons.GetCloseResult(context.Background(), season.ID)
	assert.ErrorIs(t, err, ErrCloseResultNotFound)
}

func TestCloseUnknownSeason(t *testing.T) {
	e := newEnv(t)
	_, err := e.seasons.CloseSeason(context.Background(), 404)
	assert.ErrorIs(t, err, ErrSeasonNotFound)
}

func TestPlayersWhoRefereedAndPlayedAppearTwice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")

	// carla referees one match and plays another.
	e.playRapid(t, season.ID, a, b, c)
	e.playRapid(t, season.ID, a, c, b)

	result, err := e.seasons.CloseSeason(ctx, season.ID)
	require.NoError(t, err)

	playerIDs := make([]int, 0, len(result.PlayerResults))
	for _, res := range result.PlayerResults {
		playerIDs = append(playerIDs, res.PlayerID)
	}
	assert.Contains(t, playerIDs, c.ID)

	refereeIDs := make([]int, 0, len(result.RefereeResults))
	for _, res := range result.RefereeResults {
		refereeIDs = append(refereeIDs, res.PlayerID)
	}
	assert.ElementsMatch(t, []int{b.ID, c.ID}, refereeIDs)
}

func TestAutoCloseExpired(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	startsAt, endsAt := expired()
	stale, err := e.seasons.CreateSeason(ctx, CreateSeasonInput{
		Name:     "Summer 2026",
		StartsAt: startsAt,
		EndsAt:   endsAt,
	})
	require.NoError(t, err)

	current := e.addSeason(t, "Fall 2026")

	require.NoError(t, e.seasons.AutoCloseExpired(ctx))

	reloaded, err := e.seasons.GetSeason(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonClosed, reloaded.State)

	active, err := e.seasons.GetSeason(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonActive, active.State)

	// Idempotent: the already-closed season is skipped on the next sweep.
	require.NoError(t, e.seasons.AutoCloseExpired(ctx))
}

func TestCreateSeasonValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.seasons.CreateSeason(ctx, CreateSeasonInput{Name: "   "})
	assert.Error(t, err)

	startsAt, endsAt := expired()
	_, err = e.seasons.CreateSeason(ctx, CreateSeasonInput{
		Name:     "Backwards",
		StartsAt: endsAt,
		EndsAt:   startsAt,
	})
	assert.Error(t, err)
}
