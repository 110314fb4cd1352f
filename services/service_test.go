package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pinclub/pin-engine/brackets"
	"github.com/pinclub/pin-engine/config"
	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories/memory"
)

// env wires every service over the in-memory store.
type env struct {
	store *memory.Store

	auth        AuthService
	players     PlayerService
	ranking     RankingService
	leagues     LeagueService
	matches     RapidMatchService
	seasons     SeasonService
	tournaments TournamentService
	predictions PredictionService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoring := config.DefaultScoring()

	ranking := NewRankingService(store.RankingRepo(), store.PlayerRepo())
	return &env{
		store:   store,
		auth:    NewAuthService(store.PlayerRepo()),
		players: NewPlayerService(store.PlayerRepo()),
		ranking: ranking,
		leagues: NewLeagueService(store.LeagueRepo(), ranking),
		matches: NewRapidMatchService(
			store,
			store.RapidMatchRepo(),
			store.SeasonRepo(),
			store.PlayerRepo(),
			ranking,
			scoring[config.ModeRapid],
			NopBroadcaster{},
			logger,
		),
		seasons: NewSeasonService(
			store,
			store.SeasonRepo(),
			store.RapidMatchRepo(),
			store.PlayerRepo(),
			ranking,
			StaticRewards(config.DefaultRewards()),
			NopBroadcaster{},
			logger,
		),
		tournaments: NewTournamentService(
			store,
			store.TournamentRepo(),
			store.BracketMatchRepo(),
			store.LeagueRepo(),
			store.PlayerRepo(),
			ranking,
			brackets.NewSingleEliminationGenerator(),
			scoring[config.ModeSuper],
			NopBroadcaster{},
			logger,
		),
		predictions: NewPredictionService(store.PlayerRepo(), store.RapidMatchRepo()),
	}
}

func (e *env) addPlayer(t *testing.T, name string) *models.Player {
	t.Helper()
	player, err := e.auth.Register(context.Background(), RegisterInput{
		DisplayName: name,
		Email:       name + "@club.test",
		Password:    "correct horse",
	})
	require.NoError(t, err)
	return player
}

func (e *env) addSeason(t *testing.T, name string) *models.RapidSeason {
	t.Helper()
	season, err := e.seasons.CreateSeason(context.Background(), CreateSeasonInput{Name: name})
	require.NoError(t, err)
	return season
}

func (e *env) addLeague(t *testing.T, name string, mode models.ScoringMode) *models.League {
	t.Helper()
	league, err := e.leagues.CreateLeague(context.Background(), CreateLeagueInput{Name: name, Mode: mode})
	require.NoError(t, err)
	return league
}

// playRapid registers a match as the winner and confirms it as the loser.
func (e *env) playRapid(t *testing.T, seasonID int, winner, loser, referee *models.Player) *models.RapidMatch {
	t.Helper()
	ctx := context.Background()

	match, err := e.matches.RegisterMatch(ctx, RegisterMatchInput{
		SeasonID:     seasonID,
		PlayerAID:    winner.ID,
		PlayerBID:    loser.ID,
		RefereeID:    referee.ID,
		WinnerID:     winner.ID,
		ScoreWinner:  11,
		ScoreLoser:   5,
		RegistrantID: winner.ID,
	})
	require.NoError(t, err)

	confirmed, err := e.matches.ConfirmMatch(ctx, match.ID, loser.ID)
	require.NoError(t, err)
	return confirmed
}

func (e *env) reloadPlayer(t *testing.T, id int) *models.Player {
	t.Helper()
	player, err := e.players.GetPlayer(context.Background(), id)
	require.NoError(t, err)
	return player
}

// expired returns a start/end window entirely in the past.
func expired() (time.Time, time.Time) {
	end := time.Now().UTC().Add(-time.Hour)
	return end.Add(-24 * time.Hour), end
}
