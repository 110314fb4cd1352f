package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
)

// RapidMatchService handles the two-party workflow of spontaneous matches:
// one participant registers the result, a different participant confirms it,
// and only confirmation commits points to the season standings.
type RapidMatchService interface {
	RegisterMatch(ctx context.Context, input RegisterMatchInput) (*models.RapidMatch, error)
	ConfirmMatch(ctx context.Context, matchID uuid.UUID, confirmerID int) (*models.RapidMatch, error)
	GetMatch(ctx context.Context, matchID uuid.UUID) (*models.RapidMatch, error)
	ListBySeason(ctx context.Context, seasonID int, state *models.RapidMatchState) ([]*models.RapidMatch, error)
	PendingForParticipant(ctx context.Context, playerID int) ([]*models.RapidMatch, error)
}

type RegisterMatchInput struct {
	SeasonID     int `json:"season_id"`
	PlayerAID    int `json:"player_a_id"`
	PlayerBID    int `json:"player_b_id"`
	RefereeID    int `json:"referee_id"`
	WinnerID     int `json:"winner_id"`
	ScoreWinner  int `json:"score_winner"`
	ScoreLoser   int `json:"score_loser"`
	RegistrantID int `json:"-"`
}

type rapidMatchService struct {
	txr        repositories.Transactor
	matchRepo  repositories.RapidMatchRepository
	seasonRepo repositories.SeasonRepository
	playerRepo repositories.PlayerRepository
	ranking    RankingService
	table      models.ScoringTable
	events     EventBroadcaster
	logger     *slog.Logger
}

func NewRapidMatchService(
	txr repositories.Transactor,
	matchRepo repositories.RapidMatchRepository,
	seasonRepo repositories.SeasonRepository,
	playerRepo repositories.PlayerRepository,
	ranking RankingService,
	table models.ScoringTable,
	events EventBroadcaster,
	logger *slog.Logger,
) RapidMatchService {
	return &rapidMatchService{
		txr:        txr,
		matchRepo:  matchRepo,
		seasonRepo: seasonRepo,
		playerRepo: playerRepo,
		ranking:    ranking,
		table:      table,
		events:     events,
		logger:     logger,
	}
}

func (s *rapidMatchService) RegisterMatch(ctx context.Context, input RegisterMatchInput) (*models.RapidMatch, error) {
	if input.PlayerAID == input.PlayerBID ||
		input.PlayerAID == input.RefereeID ||
		input.PlayerBID == input.RefereeID {
		return nil, ErrInvalidParticipants
	}
	if input.WinnerID != input.PlayerAID && input.WinnerID != input.PlayerBID {
		return nil, ErrInvalidParticipants
	}
	if input.RegistrantID != input.PlayerAID &&
		input.RegistrantID != input.PlayerBID &&
		input.RegistrantID != input.RefereeID {
		return nil, ErrInvalidParticipants
	}
	if input.ScoreWinner < 0 || input.ScoreLoser < 0 || input.ScoreWinner < input.ScoreLoser {
		return nil, ErrInvalidParticipants
	}

	season, err := s.loadSeason(ctx, input.SeasonID)
	if err != nil {
		return nil, err
	}
	if season.State != models.SeasonActive {
		return nil, ErrSeasonNotActive
	}

	for _, id := range []int{input.PlayerAID, input.PlayerBID, input.RefereeID} {
		if _, err := s.playerRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, ErrPlayerNotFound
			}
			return nil, err
		}
	}

	match := &models.RapidMatch{
		ID:           uuid.New(),
		SeasonID:     input.SeasonID,
		PlayerAID:    input.PlayerAID,
		PlayerBID:    input.PlayerBID,
		RefereeID:    input.RefereeID,
		WinnerID:     input.WinnerID,
		ScoreWinner:  input.ScoreWinner,
		ScoreLoser:   input.ScoreLoser,
		RegistrantID: input.RegistrantID,
		State:        models.RapidMatchPending,
	}

	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		return nil, fmt.Errorf("failed to register match: %w", err)
	}

	s.logger.Info("rapid match registered",
		slog.String("match_id", match.ID.String()),
		slog.Int("season_id", match.SeasonID),
		slog.Int("registrant_id", match.RegistrantID),
	)
	return match, nil
}

func (s *rapidMatchService) ConfirmMatch(ctx context.Context, matchID uuid.UUID, confirmerID int) (*models.RapidMatch, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.State != models.RapidMatchPending {
		return nil, ErrMatchAlreadyValidated
	}
	if !match.HasParticipant(confirmerID) || confirmerID == match.RegistrantID {
		return nil, ErrInvalidConfirmer
	}

	season, err := s.loadSeason(ctx, match.SeasonID)
	if err != nil {
		return nil, err
	}
	if season.State != models.SeasonActive {
		return nil, ErrSeasonNotActive
	}

	validatedAt := time.Now().UTC()
	err = s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// ConfirmPending is conditional on the pending state, so a racing
		// confirm attempt fails here and the points apply exactly once.
		err := s.matchRepo.ConfirmPending(ctx, exec, matchID, confirmerID,
			s.table.Victory, s.table.Defeat, s.table.Referee, validatedAt)
		if err != nil {
			if errors.Is(err, repositories.ErrRapidMatchNotPending) {
				return ErrMatchAlreadyValidated
			}
			return err
		}

		outcome := MatchOutcome{
			WinnerID:  match.WinnerID,
			LoserID:   match.LoserID(),
			RefereeID: &match.RefereeID,
			Table:     s.table,
		}
		return s.ranking.ApplyOutcome(ctx, exec, models.SeasonScope(match.SeasonID), models.ScoringSimple, outcome)
	})
	if err != nil {
		return nil, err
	}

	confirmed, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("rapid match validated",
		slog.String("match_id", matchID.String()),
		slog.Int("season_id", confirmed.SeasonID),
		slog.Int("confirmer_id", confirmerID),
	)
	s.events.BroadcastToRoom(SeasonRoom(confirmed.SeasonID), newEvent(EventMatchValidated, confirmed))
	return confirmed, nil
}

func (s *rapidMatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*models.RapidMatch, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrRapidMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *rapidMatchService) ListBySeason(ctx context.Context, seasonID int, state *models.RapidMatchState) ([]*models.RapidMatch, error) {
	if _, err := s.loadSeason(ctx, seasonID); err != nil {
		return nil, err
	}
	return s.matchRepo.ListBySeason(ctx, seasonID, state)
}

func (s *rapidMatchService) PendingForParticipant(ctx context.Context, playerID int) ([]*models.RapidMatch, error) {
	return s.matchRepo.ListPendingForParticipant(ctx, playerID)
}

func (s *rapidMatchService) loadSeason(ctx context.Context, seasonID int) (*models.RapidSeason, error) {
	season, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return season, nil
}
