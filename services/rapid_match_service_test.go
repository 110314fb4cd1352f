package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinclub/pin-engine/models"
)

func TestRegisterMatchStaysPending(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")

	match, err := e.matches.RegisterMatch(ctx, RegisterMatchInput{
		SeasonID:     season.ID,
		PlayerAID:    a.ID,
		PlayerBID:    b.ID,
		RefereeID:    c.ID,
		WinnerID:     a.ID,
		ScoreWinner:  11,
		ScoreLoser:   5,
		RegistrantID: a.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RapidMatchPending, match.State)
	assert.Nil(t, match.ConfirmerID)
	assert.Zero(t, match.WinnerPoints)

	// No points move until confirmation.
	entries, err := e.seasons.Leaderboard(ctx, season.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConfirmMatchAwardsPoints(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")

	match := e.playRapid(t, season.ID, a, b, c)
	assert.Equal(t, models.RapidMatchValidated, match.State)
	require.NotNil(t, match.ConfirmerID)
	assert.Equal(t, b.ID, *match.ConfirmerID)
	assert.NotNil(t, match.ValidatedAt)
	assert.Equal(t, 3, match.WinnerPoints)
	assert.Equal(t, 1, match.LoserPoints)
	assert.Equal(t, 2, match.RefereePoints)

	entries, err := e.seasons.Leaderboard(ctx, season.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byPlayer := map[int]*models.RankingEntry{}
	for _, entry := range entries {
		byPlayer[entry.PlayerID] = entry
	}
	assert.Equal(t, 3, byPlayer[a.ID].Points)
	assert.Equal(t, 1, byPlayer[a.ID].Wins)
	assert.Equal(t, 1, byPlayer[a.ID].Streak)
	assert.Equal(t, 1, byPlayer[b.ID].Points)
	assert.Equal(t, 1, byPlayer[b.ID].Losses)
	assert.Equal(t, -1, byPlayer[b.ID].Streak)
	assert.Equal(t, 2, byPlayer[c.ID].Points)
	assert.Equal(t, 1, byPlayer[c.ID].Refereed)

	// Winner tops the board, referee second on points.
	assert.Equal(t, a.ID, entries[0].PlayerID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, c.ID, entries[1].PlayerID)

	// Global aggregates move with the season entry.
	assert.Equal(t, 1, e.reloadPlayer(t, a.ID).Wins)
	assert.Equal(t, 1, e.reloadPlayer(t, b.ID).Losses)
	assert.Equal(t, 1, e.reloadPlayer(t, c.ID).Refereed)
}

func TestRapidModeDoesNotTouchRating(t *testing.T) {
	e := newEnv(t)
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")

	e.playRapid(t, season.ID, a, b, c)

	assert.Equal(t, InitialRating, e.reloadPlayer(t, a.ID).Rating)
	assert.Equal(t, InitialRating, e.reloadPlayer(t, b.ID).Rating)
}

func TestRegisterMatchValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")
	d := e.addPlayer(t, "dmitri")

	base := RegisterMatchInput{
		SeasonID:     season.ID,
		PlayerAID:    a.ID,
		PlayerBID:    b.ID,
		RefereeID:    c.ID,
		WinnerID:     a.ID,
		ScoreWinner:  11,
		ScoreLoser:   5,
		RegistrantID: a.ID,
	}

	testCases := []struct {
		name   string
		mutate func(*RegisterMatchInput)
	}{
		{"player plays themselves", func(in *RegisterMatchInput) { in.PlayerBID = a.ID }},
		{"referee is player A", func(in *RegisterMatchInput) { in.RefereeID = a.ID }},
		{"referee is player B", func(in *RegisterMatchInput) { in.RefereeID = b.ID }},
		{"winner not a player", func(in *RegisterMatchInput) { in.WinnerID = c.ID }},
		{"registrant not involved", func(in *RegisterMatchInput) { in.RegistrantID = d.ID }},
		{"negative score", func(in *RegisterMatchInput) { in.ScoreLoser = -1 }},
		{"winner score below loser", func(in *RegisterMatchInput) { in.ScoreWinner, in.ScoreLoser = 5, 11 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := base
			tc.mutate(&input)
			_, err := e.matches.RegisterMatch(ctx, input)
			assert.ErrorIs(t, err, ErrInvalidParticipants)
		})
	}
}

func TestRegisterMatchUnknownSeasonAndPlayers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")

	input := RegisterMatchInput{
		SeasonID:     season.ID + 100,
		PlayerAID:    a.ID,
		PlayerBID:    b.ID,
		RefereeID:    c.ID,
		WinnerID:     a.ID,
		ScoreWinner:  11,
		ScoreLoser:   9,
		RegistrantID: a.ID,
	}
	_, err := e.matches.RegisterMatch(ctx, input)
	assert.ErrorIs(t, err, ErrSeasonNotFound)

	input.SeasonID = season.ID
	input.RefereeID = c.ID + 100
	input.RegistrantID = a.ID
	_, err = e.matches.RegisterMatch(ctx, input)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestConfirmMatchRejectsRegistrantAndOutsiders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")
	d := e.addPlayer(t, "dmitri")

	match, err := e.matches.RegisterMatch(ctx, RegisterMatchInput{
		SeasonID:     season.ID,
		PlayerAID:    a.ID,
		PlayerBID:    b.ID,
		RefereeID:    c.ID,
		WinnerID:     b.ID,
		ScoreWinner:  11,
		ScoreLoser:   7,
		RegistrantID: a.ID,
	})
	require.NoError(t, err)

	_, err = e.matches.ConfirmMatch(ctx, match.ID, a.ID)
	assert.ErrorIs(t, err, ErrInvalidConfirmer, "registrant cannot confirm")

	_, err = e.matches.ConfirmMatch(ctx, match.ID, d.ID)
	assert.ErrorIs(t, err, ErrInvalidConfirmer, "outsider cannot confirm")

	// The referee is a valid confirmer.
	confirmed, err := e.matches.ConfirmMatch(ctx, match.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RapidMatchValidated, confirmed.State)
}

func TestConfirmMatchTwiceConflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")

	match := e.playRapid(t, season.ID, a, b, c)

	_, err := e.matches.ConfirmMatch(ctx, match.ID, c.ID)
	assert.ErrorIs(t, err, ErrMatchAlreadyValidated)
}

func TestConcurrentConfirmAppliesOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")

	match, err := e.matches.RegisterMatch(ctx, RegisterMatchInput{
		SeasonID:     season.ID,
		PlayerAID:    a.ID,
		PlayerBID:    b.ID,
		RefereeID:    c.ID,
		WinnerID:     a.ID,
		ScoreWinner:  11,
		ScoreLoser:   5,
		RegistrantID: a.ID,
	})
	require.NoError(t, err)

	confirmers := []int{b.ID, c.ID}
	results := make([]error, len(confirmers))
	var wg sync.WaitGroup
	for i, confirmerID := range confirmers {
		wg.Add(1)
		go func(i, confirmerID int) {
			defer wg.Done()
			_, results[i] = e.matches.ConfirmMatch(ctx, match.ID, confirmerID)
		}(i, confirmerID)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrMatchAlreadyValidated)
		}
	}
	assert.Equal(t, 1, successes)

	// Points applied exactly once.
	entries, err := e.seasons.Leaderboard(ctx, season.ID)
	require.NoError(t, err)
	for _, entry := range entries {
		if entry.PlayerID == a.ID {
			assert.Equal(t, 3, entry.Points)
			assert.Equal(t, 1, entry.Played)
		}
	}
}

func TestMatchesInClosedSeasonRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")

	pending, err := e.matches.RegisterMatch(ctx, RegisterMatchInput{
		SeasonID:     season.ID,
		PlayerAID:    a.ID,
		PlayerBID:    b.ID,
		RefereeID:    c.ID,
		WinnerID:     a.ID,
		ScoreWinner:  11,
		ScoreLoser:   5,
		RegistrantID: a.ID,
	})
	require.NoError(t, err)

	_, err = e.seasons.CloseSeason(ctx, season.ID)
	require.NoError(t, err)

	_, err = e.matches.RegisterMatch(ctx, RegisterMatchInput{
		SeasonID:     season.ID,
		PlayerAID:    a.ID,
		PlayerBID:    b.ID,
		RefereeID:    c.ID,
		WinnerID:     a.ID,
		ScoreWinner:  11,
		ScoreLoser:   5,
		RegistrantID: a.ID,
	})
	assert.ErrorIs(t, err, ErrSeasonNotActive)

	// A match left pending when the season closed can no longer be
	// confirmed.
	_, err = e.matches.ConfirmMatch(ctx, pending.ID, b.ID)
	assert.ErrorIs(t, err, ErrSeasonNotActive)
}

func TestPendingForParticipant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")
	d := e.addPlayer(t, "dmitri")

	match, err := e.matches.RegisterMatch(ctx, RegisterMatchInput{
		SeasonID:     season.ID,
		PlayerAID:    a.ID,
		PlayerBID:    b.ID,
		RefereeID:    c.ID,
		WinnerID:     a.ID,
		ScoreWinner:  11,
		ScoreLoser:   5,
		RegistrantID: a.ID,
	})
	require.NoError(t, err)

	for _, playerID := range []int{a.ID, b.ID, c.ID} {
		pending, err := e.matches.PendingForParticipant(ctx, playerID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, match.ID, pending[0].ID)
	}

	pending, err := e.matches.PendingForParticipant(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestListBySeasonStateFilter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	season := e.addSeason(t, "Fall 2026")
	a, b, c := e.addPlayer(t, "ana"), e.addPlayer(t, "bruno"), e.addPlayer(t, "carla")

	e.playRapid(t, season.ID, a, b, c)
	_, err := e.matches.RegisterMatch(ctx, RegisterMatchInput{
		SeasonID:     season.ID,
		PlayerAID:    b.ID,
		PlayerBID:    c.ID,
		RefereeID:    a.ID,
		WinnerID:     c.ID,
		ScoreWinner:  11,
		ScoreLoser:   8,
		RegistrantID: b.ID,
	})
	require.NoError(t, err)

	all, err := e.matches.ListBySeason(ctx, season.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pendingState := models.RapidMatchPending
	pending, err := e.matches.ListBySeason(ctx, season.ID, &pendingState)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.RapidMatchPending, pending[0].State)

	validatedState := models.RapidMatchValidated
	validated, err := e.matches.ListBySeason(ctx, season.ID, &validatedState)
	require.NoError(t, err)
	require.Len(t, validated, 1)
	assert.Equal(t, models.RapidMatchValidated, validated[0].State)
}
