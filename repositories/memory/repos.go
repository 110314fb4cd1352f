package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
)

// The Store satisfies PlayerRepository and RankingRepository directly; the
// remaining interfaces reuse method names (Create, GetByID, ...), so each is
// exposed through a thin adapter over the same store.

func (s *Store) PlayerRepo() repositories.PlayerRepository   { return s }
func (s *Store) RankingRepo() repositories.RankingRepository { return s }

func (s *Store) LeagueRepo() repositories.LeagueRepository {
	return &leagueRepo{s: s}
}

type leagueRepo struct{ s *Store }

func (r *leagueRepo) Create(ctx context.Context, exec repositories.SQLExecutor, league *models.League) error {
	return r.s.CreateLeague(ctx, exec, league)
}

func (r *leagueRepo) GetByID(ctx context.Context, id int) (*models.League, error) {
	return r.s.GetLeagueByID(ctx, id)
}

func (r *leagueRepo) List(ctx context.Context) ([]*models.League, error) {
	return r.s.ListLeagues(ctx)
}

func (s *Store) RapidMatchRepo() repositories.RapidMatchRepository {
	return &rapidMatchRepo{s: s}
}

type rapidMatchRepo struct{ s *Store }

func (r *rapidMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.RapidMatch) error {
	return r.s.CreateRapidMatch(ctx, exec, match)
}

func (r *rapidMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RapidMatch, error) {
	return r.s.GetRapidMatchByID(ctx, id)
}

func (r *rapidMatchRepo) ConfirmPending(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, confirmerID int, winnerPts, loserPts, refereePts int, validatedAt time.Time) error {
	return r.s.ConfirmPending(ctx, exec, id, confirmerID, winnerPts, loserPts, refereePts, validatedAt)
}

func (r *rapidMatchRepo) ListBySeason(ctx context.Context, seasonID int, state *models.RapidMatchState) ([]*models.RapidMatch, error) {
	return r.s.ListBySeason(ctx, seasonID, state)
}

func (r *rapidMatchRepo) ListPendingForParticipant(ctx context.Context, playerID int) ([]*models.RapidMatch, error) {
	return r.s.ListPendingForParticipant(ctx, playerID)
}

func (r *rapidMatchRepo) ListValidatedBetween(ctx context.Context, playerA, playerB, limit int) ([]*models.RapidMatch, error) {
	return r.s.ListValidatedBetween(ctx, playerA, playerB, limit)
}

func (r *rapidMatchRepo) CountValidatedBySeason(ctx context.Context, seasonID int) (int, error) {
	return r.s.CountValidatedBySeason(ctx, seasonID)
}

func (s *Store) SeasonRepo() repositories.SeasonRepository {
	return &seasonRepo{s: s}
}

type seasonRepo struct{ s *Store }

func (r *seasonRepo) Create(ctx context.Context, exec repositories.SQLExecutor, season *models.RapidSeason) error {
	return r.s.CreateSeason(ctx, exec, season)
}

func (r *seasonRepo) GetByID(ctx context.Context, id int) (*models.RapidSeason, error) {
	return r.s.GetSeasonByID(ctx, id)
}

func (r *seasonRepo) List(ctx context.Context) ([]*models.RapidSeason, error) {
	return r.s.ListSeasons(ctx)
}

func (r *seasonRepo) CloseActive(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	return r.s.CloseActive(ctx, exec, id)
}

func (r *seasonRepo) SaveCloseResult(ctx context.Context, exec repositories.SQLExecutor, result *models.SeasonCloseResult) error {
	return r.s.SaveCloseResult(ctx, exec, result)
}

func (r *seasonRepo) GetCloseResult(ctx context.Context, seasonID int) (*models.SeasonCloseResult, error) {
	return r.s.GetCloseResult(ctx, seasonID)
}

func (s *Store) TournamentRepo() repositories.TournamentRepository {
	return &tournamentRepo{s: s}
}

type tournamentRepo struct{ s *Store }

func (r *tournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) error {
	return r.s.CreateTournament(ctx, exec, tournament)
}

func (r *tournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return r.s.GetTournamentByID(ctx, id)
}

func (r *tournamentRepo) ListByLeague(ctx context.Context, leagueID int) ([]*models.Tournament, error) {
	return r.s.ListByLeague(ctx, leagueID)
}

func (r *tournamentRepo) TransitionStatus(ctx context.Context, exec repositories.SQLExecutor, id int, from, to models.TournamentStatus) error {
	return r.s.TransitionStatus(ctx, exec, id, from, to)
}

func (r *tournamentRepo) SetRounds(ctx context.Context, exec repositories.SQLExecutor, id, rounds int) error {
	return r.s.SetRounds(ctx, exec, id, rounds)
}

func (r *tournamentRepo) SetChampion(ctx context.Context, exec repositories.SQLExecutor, id, playerID int) error {
	return r.s.SetChampion(ctx, exec, id, playerID)
}

func (r *tournamentRepo) SaveParticipants(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, participants []models.Participant) error {
	return r.s.SaveParticipants(ctx, exec, tournamentID, participants)
}

func (r *tournamentRepo) ListParticipants(ctx context.Context, tournamentID int) ([]models.Participant, error) {
	return r.s.ListParticipants(ctx, tournamentID)
}

func (s *Store) BracketMatchRepo() repositories.BracketMatchRepository {
	return &bracketMatchRepo{s: s}
}

type bracketMatchRepo struct{ s *Store }

func (r *bracketMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.BracketMatch) error {
	return r.s.CreateBatch(ctx, exec, matches)
}

func (r *bracketMatchRepo) Get(ctx context.Context, tournamentID int, uid string) (*models.BracketMatch, error) {
	return r.s.GetBracketMatch(ctx, tournamentID, uid)
}

func (r *bracketMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.BracketMatch, error) {
	return r.s.ListBracketMatches(ctx, tournamentID)
}

func (r *bracketMatchRepo) FinishPending(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, uid string, winnerID, scoreA, scoreB int) error {
	return r.s.FinishPending(ctx, exec, tournamentID, uid, winnerID, scoreA, scoreB)
}

func (r *bracketMatchRepo) SetSlot(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, uid string, slot, playerID int) error {
	return r.s.SetSlot(ctx, exec, tournamentID, uid, slot, playerID)
}
