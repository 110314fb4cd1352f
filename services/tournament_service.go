package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pinclub/pin-engine/brackets"
	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
)

// TournamentService drives Super Pin tournaments: creation, bracket
// generation seeded from the league ranking, result submission with winner
// advancement, and finalization.
type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Tournament, error)
	// GenerateBrackets snapshots the league ranking as the seed order, builds
	// the full bracket and moves the tournament to in_progress. A tournament
	// with a single eligible participant is finalized immediately.
	GenerateBrackets(ctx context.Context, tournamentID int) (*BracketView, error)
	SubmitMatchResult(ctx context.Context, input SubmitResultInput) (*BracketView, error)
	GetBrackets(ctx context.Context, tournamentID int) (*BracketView, error)
}

type CreateTournamentInput struct {
	LeagueID   int       `json:"league_id"`
	Name       string    `json:"name"`
	StartDate  time.Time `json:"start_date"`
	ThirdPlace bool      `json:"third_place"`
}

type SubmitResultInput struct {
	TournamentID int    `json:"-"`
	MatchUID     string `json:"-"`
	WinnerID     int    `json:"winner_id"`
	ScoreA       int    `json:"score_a"`
	ScoreB       int    `json:"score_b"`
}

// BracketView is the read model of a tournament's bracket: matches grouped
// by round, the consolation match split out.
type BracketView struct {
	Tournament *models.Tournament       `json:"tournament"`
	Rounds     [][]*models.BracketMatch `json:"rounds"`
	ThirdPlace *models.BracketMatch     `json:"third_place,omitempty"`
}

type tournamentService struct {
	txr         repositories.Transactor
	tournRepo   repositories.TournamentRepository
	bracketRepo repositories.BracketMatchRepository
	leagueRepo  repositories.LeagueRepository
	playerRepo  repositories.PlayerRepository
	ranking     RankingService
	generator   brackets.BracketGenerator
	table       models.ScoringTable
	events      EventBroadcaster
	logger      *slog.Logger
}

func NewTournamentService(
	txr repositories.Transactor,
	tournRepo repositories.TournamentRepository,
	bracketRepo repositories.BracketMatchRepository,
	leagueRepo repositories.LeagueRepository,
	playerRepo repositories.PlayerRepository,
	ranking RankingService,
	generator brackets.BracketGenerator,
	table models.ScoringTable,
	events EventBroadcaster,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		txr:         txr,
		tournRepo:   tournRepo,
		bracketRepo: bracketRepo,
		leagueRepo:  leagueRepo,
		playerRepo:  playerRepo,
		ranking:     ranking,
		generator:   generator,
		table:       table,
		events:      events,
		logger:      logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("tournament name is required")
	}

	league, err := s.loadLeague(ctx, input.LeagueID)
	if err != nil {
		return nil, err
	}
	if !league.Active {
		return nil, ErrLeagueInactive
	}

	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = time.Now().UTC()
	}

	tournament := &models.Tournament{
		LeagueID:   league.ID,
		Name:       name,
		Status:     models.TournamentDraft,
		StartDate:  startDate,
		ThirdPlace: input.ThirdPlace,
	}
	if err := s.tournRepo.Create(ctx, nil, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	participants, err := s.tournRepo.ListParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	tournament.Participants = participants
	return tournament, nil
}

func (s *tournamentService) ListByLeague(ctx context.Context, leagueID int) ([]*models.Tournament, error) {
	if _, err := s.loadLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	return s.tournRepo.ListByLeague(ctx, leagueID)
}

func (s *tournamentService) GenerateBrackets(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentDraft {
		return nil, ErrTournamentInvalidStatus
	}

	participants, err := s.seedFromLeague(ctx, tournament)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, ErrTournamentNoParticipants
	}

	if len(participants) == 1 {
		// A lone participant is champion by default, no bracket needed.
		championID := participants[0].PlayerID
		err = s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.tournRepo.SaveParticipants(ctx, exec, tournament.ID, participants); err != nil {
				return err
			}
			if err := s.tournRepo.SetChampion(ctx, exec, tournament.ID, championID); err != nil {
				return err
			}
			return s.transition(ctx, exec, tournament.ID, models.TournamentDraft, models.TournamentFinalized)
		})
		if err != nil {
			return nil, err
		}
		s.events.BroadcastToRoom(TournamentRoom(tournament.ID), newEvent(EventTournamentFinalized, map[string]int{"champion_id": championID}))
		return s.GetBrackets(ctx, tournamentID)
	}

	generated, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Tournament:   tournament,
		Participants: participants,
	})
	if err != nil {
		return nil, err
	}

	err = s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournRepo.SaveParticipants(ctx, exec, tournament.ID, participants); err != nil {
			return err
		}
		if err := s.bracketRepo.CreateBatch(ctx, exec, generated.Matches); err != nil {
			return err
		}
		if err := s.tournRepo.SetRounds(ctx, exec, tournament.ID, generated.Rounds); err != nil {
			return err
		}
		return s.transition(ctx, exec, tournament.ID, models.TournamentDraft, models.TournamentInProgress)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("participants", len(participants)),
		slog.Int("rounds", generated.Rounds),
		slog.String("generator", s.generator.GetName()),
	)
	view, err := s.GetBrackets(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	s.events.BroadcastToRoom(TournamentRoom(tournament.ID), newEvent(EventBracketGenerated, view))
	return view, nil
}

func (s *tournamentService) SubmitMatchResult(ctx context.Context, input SubmitResultInput) (*BracketView, error) {
	tournament, err := s.GetTournament(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	// The consolation match may still trail the final, so it stays
	// submittable after finalization.
	if tournament.Status != models.TournamentInProgress &&
		!(tournament.Status == models.TournamentFinalized && input.MatchUID == models.ThirdPlaceUID) {
		return nil, ErrTournamentInvalidStatus
	}

	match, err := s.bracketRepo.Get(ctx, input.TournamentID, input.MatchUID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketMatchNotFound) {
			return nil, ErrBracketMatchNotFound
		}
		return nil, err
	}
	switch match.State {
	case models.BracketBye:
		return nil, ErrBracketMatchBye
	case models.BracketFinished:
		return nil, ErrBracketMatchFinished
	}
	if match.SlotA == nil || match.SlotB == nil {
		return nil, ErrBracketMatchNotReady
	}
	if !match.Occupies(input.WinnerID) {
		return nil, ErrInvalidWinner
	}

	league, err := s.loadLeague(ctx, tournament.LeagueID)
	if err != nil {
		return nil, err
	}

	loserID := *match.SlotA
	if loserID == input.WinnerID {
		loserID = *match.SlotB
	}
	isFinal := match.UID == models.MatchUID(tournament.Rounds, 1)

	err = s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		err := s.bracketRepo.FinishPending(ctx, exec, tournament.ID, match.UID, input.WinnerID, input.ScoreA, input.ScoreB)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketMatchNotPending) {
				return ErrBracketMatchFinished
			}
			return err
		}

		if nextUID, slot, ok := match.NextMatch(tournament.Rounds); ok {
			if err := s.bracketRepo.SetSlot(ctx, exec, tournament.ID, nextUID, slot, input.WinnerID); err != nil {
				return err
			}
		}
		if tournament.ThirdPlace && match.IsSemifinal(tournament.Rounds) && match.UID != models.ThirdPlaceUID {
			// Semifinal order doubles as the consolation slot.
			if err := s.bracketRepo.SetSlot(ctx, exec, tournament.ID, models.ThirdPlaceUID, match.OrderInRound, loserID); err != nil {
				return err
			}
		}
		if isFinal {
			if err := s.tournRepo.SetChampion(ctx, exec, tournament.ID, input.WinnerID); err != nil {
				return err
			}
			if err := s.transition(ctx, exec, tournament.ID, models.TournamentInProgress, models.TournamentFinalized); err != nil {
				return err
			}
		}

		outcome := MatchOutcome{WinnerID: input.WinnerID, LoserID: loserID, Table: s.table}
		return s.ranking.ApplyOutcome(ctx, exec, models.LeagueScope(tournament.LeagueID), league.Mode, outcome)
	})
	if err != nil {
		return nil, err
	}

	view, err := s.GetBrackets(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket match finished",
		slog.Int("tournament_id", tournament.ID),
		slog.String("match_uid", match.UID),
		slog.Int("winner_id", input.WinnerID),
	)
	s.events.BroadcastToRoom(TournamentRoom(tournament.ID), newEvent(EventBracketAdvanced, view))
	if isFinal {
		s.events.BroadcastToRoom(TournamentRoom(tournament.ID), newEvent(EventTournamentFinalized, map[string]int{"champion_id": input.WinnerID}))
	}
	return view, nil
}

func (s *tournamentService) GetBrackets(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	matches, err := s.bracketRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	view := &BracketView{Tournament: tournament}
	if tournament.Rounds > 0 {
		view.Rounds = make([][]*models.BracketMatch, tournament.Rounds)
	}
	for _, m := range matches {
		if m.UID == models.ThirdPlaceUID {
			view.ThirdPlace = m
			continue
		}
		view.Rounds[m.Round-1] = append(view.Rounds[m.Round-1], m)
	}
	for _, round := range view.Rounds {
		sort.Slice(round, func(i, j int) bool { return round[i].OrderInRound < round[j].OrderInRound })
	}
	return view, nil
}

// seedFromLeague snapshots the league leaderboard into a seed list, best
// player first.
func (s *tournamentService) seedFromLeague(ctx context.Context, tournament *models.Tournament) ([]models.Participant, error) {
	entries, err := s.ranking.Leaderboard(ctx, models.LeagueScope(tournament.LeagueID))
	if err != nil {
		return nil, err
	}

	participants := make([]models.Participant, 0, len(entries))
	for i, entry := range entries {
		player, err := s.playerRepo.GetByID(ctx, entry.PlayerID)
		if err != nil {
			return nil, err
		}
		participants = append(participants, models.Participant{
			TournamentID: tournament.ID,
			PlayerID:     entry.PlayerID,
			Seed:         i + 1,
			DisplayName:  player.DisplayName,
		})
	}
	return participants, nil
}

func (s *tournamentService) transition(ctx context.Context, exec repositories.SQLExecutor, id int, from, to models.TournamentStatus) error {
	err := s.tournRepo.TransitionStatus(ctx, exec, id, from, to)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentStatusConflict) {
			return ErrTournamentInvalidStatus
		}
		return err
	}
	return nil
}

func (s *tournamentService) loadLeague(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return league, nil
}
