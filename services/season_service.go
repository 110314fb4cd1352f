package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
)

// SeasonService manages Rapid Pin seasons and their terminal close: final
// standings computed once, reward tiers assigned, results frozen.
type SeasonService interface {
	CreateSeason(ctx context.Context, input CreateSeasonInput) (*models.RapidSeason, error)
	GetSeason(ctx context.Context, id int) (*models.RapidSeason, error)
	ListSeasons(ctx context.Context) ([]*models.RapidSeason, error)
	Leaderboard(ctx context.Context, seasonID int) ([]*models.RankingEntry, error)
	// CloseSeason flips the season to closed and computes final standings
	// with reward tiers for players and referees. Exactly one caller wins a
	// close race; everyone else gets ErrSeasonAlreadyClosed.
	CloseSeason(ctx context.Context, seasonID int) (*models.SeasonCloseResult, error)
	GetCloseResult(ctx context.Context, seasonID int) (*models.SeasonCloseResult, error)
	// AutoCloseExpired closes every active season whose end date has passed.
	AutoCloseExpired(ctx context.Context) error
}

type CreateSeasonInput struct {
	Name     string    `json:"name"`
	LeagueID *int      `json:"league_id,omitempty"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

type seasonService struct {
	txr        repositories.Transactor
	seasonRepo repositories.SeasonRepository
	matchRepo  repositories.RapidMatchRepository
	playerRepo repositories.PlayerRepository
	ranking    RankingService
	rewards    RewardProvider
	events     EventBroadcaster
	logger     *slog.Logger
}

func NewSeasonService(
	txr repositories.Transactor,
	seasonRepo repositories.SeasonRepository,
	matchRepo repositories.RapidMatchRepository,
	playerRepo repositories.PlayerRepository,
	ranking RankingService,
	rewards RewardProvider,
	events EventBroadcaster,
	logger *slog.Logger,
) SeasonService {
	return &seasonService{
		txr:        txr,
		seasonRepo: seasonRepo,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		ranking:    ranking,
		rewards:    rewards,
		events:     events,
		logger:     logger,
	}
}

func (s *seasonService) CreateSeason(ctx context.Context, input CreateSeasonInput) (*models.RapidSeason, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("season name is required")
	}
	startsAt := input.StartsAt
	if startsAt.IsZero() {
		startsAt = time.Now().UTC()
	}
	endsAt := input.EndsAt
	if !endsAt.IsZero() && endsAt.Before(startsAt) {
		return nil, errors.New("season cannot end before it starts")
	}

	season := &models.RapidSeason{
		LeagueID: input.LeagueID,
		Name:     name,
		State:    models.SeasonActive,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
	if err := s.seasonRepo.Create(ctx, nil, season); err != nil {
		return nil, fmt.Errorf("failed to create season: %w", err)
	}
	return season, nil
}

func (s *seasonService) GetSeason(ctx context.Context, id int) (*models.RapidSeason, error) {
	season, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return season, nil
}

func (s *seasonService) ListSeasons(ctx context.Context) ([]*models.RapidSeason, error) {
	return s.seasonRepo.List(ctx)
}

func (s *seasonService) Leaderboard(ctx context.Context, seasonID int) ([]*models.RankingEntry, error) {
	if _, err := s.GetSeason(ctx, seasonID); err != nil {
		return nil, err
	}
	return s.ranking.Leaderboard(ctx, models.SeasonScope(seasonID))
}

func (s *seasonService) CloseSeason(ctx context.Context, seasonID int) (*models.SeasonCloseResult, error) {
	season, err := s.GetSeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	if season.State != models.SeasonActive {
		return nil, ErrSeasonAlreadyClosed
	}

	// Flip the state first. The conditional update is the race arbiter:
	// once it lands, no further match can be registered or confirmed, so
	// the standings below are final.
	if err := s.seasonRepo.CloseActive(ctx, nil, seasonID); err != nil {
		if errors.Is(err, repositories.ErrSeasonStateConflict) {
			return nil, ErrSeasonAlreadyClosed
		}
		return nil, err
	}

	var (
		entries      []*models.RankingEntry
		totalMatches int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.ranking.Leaderboard(gctx, models.SeasonScope(seasonID))
		return err
	})
	g.Go(func() error {
		var err error
		totalMatches, err = s.matchRepo.CountValidatedBySeason(gctx, seasonID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rewards := s.rewards.RewardTable()
	names, err := s.displayNames(ctx, entries)
	if err != nil {
		return nil, err
	}

	result := &models.SeasonCloseResult{
		SeasonID:       seasonID,
		ClosedAt:       time.Now().UTC(),
		PlayerResults:  playerStandings(entries, names, rewards),
		RefereeResults: refereeStandings(entries, names, rewards),
		TotalMatches:   totalMatches,
	}

	err = s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.seasonRepo.SaveCloseResult(ctx, exec, result); err != nil {
			if errors.Is(err, repositories.ErrCloseResultConflict) {
				return ErrSeasonAlreadyClosed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("season closed",
		slog.Int("season_id", seasonID),
		slog.Int("players", len(result.PlayerResults)),
		slog.Int("referees", len(result.RefereeResults)),
		slog.Int("total_matches", totalMatches),
	)
	s.events.BroadcastToRoom(SeasonRoom(seasonID), newEvent(EventSeasonClosed, result))
	return result, nil
}

func (s *seasonService) AutoCloseExpired(ctx context.Context) error {
	seasons, err := s.seasonRepo.List(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, season := range seasons {
		if season.State != models.SeasonActive || season.EndsAt.IsZero() || season.EndsAt.After(now) {
			continue
		}
		if _, err := s.CloseSeason(ctx, season.ID); err != nil {
			// Losing the close race to a manual close is fine.
			if errors.Is(err, ErrSeasonAlreadyClosed) {
				continue
			}
			s.logger.Error("failed to auto-close season",
				slog.Int("season_id", season.ID), slog.Any("error", err))
		}
	}
	return nil
}

func (s *seasonService) GetCloseResult(ctx context.Context, seasonID int) (*models.SeasonCloseResult, error) {
	result, err := s.seasonRepo.GetCloseResult(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrCloseResultNotFound) {
			return nil, ErrCloseResultNotFound
		}
		return nil, err
	}
	return result, nil
}

// playerStandings keeps the leaderboard order and attaches the player reward
// tier for each position. Players who never played (referee-only entries)
// are skipped.
func playerStandings(entries []*models.RankingEntry, names map[int]string, rewards models.RewardTable) []models.SeasonResult {
	results := make([]models.SeasonResult, 0, len(entries))
	position := 0
	for _, entry := range entries {
		if entry.Played == 0 {
			continue
		}
		position++
		tier := models.PlayerTierForPosition(position)
		reward := rewards.Players[tier]
		results = append(results, models.SeasonResult{
			Position:    position,
			PlayerID:    entry.PlayerID,
			DisplayName: names[entry.PlayerID],
			Points:      entry.Points,
			Bonus:       reward.Bonus,
			Tier:        tier,
			Badge:       reward.Badge,
			Perks:       reward.Perks,
			Role:        models.ResultRolePlayer,
		})
	}
	return results
}

// refereeStandings ranks everyone who refereed at least once by matches
// refereed, then points.
func refereeStandings(entries []*models.RankingEntry, names map[int]string, rewards models.RewardTable) []models.SeasonResult {
	referees := make([]*models.RankingEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Refereed > 0 {
			referees = append(referees, entry)
		}
	}
	sort.SliceStable(referees, func(i, j int) bool {
		if referees[i].Refereed != referees[j].Refereed {
			return referees[i].Refereed > referees[j].Refereed
		}
		return referees[i].Points > referees[j].Points
	})

	results := make([]models.SeasonResult, 0, len(referees))
	for i, entry := range referees {
		position := i + 1
		tier := models.RefereeTierForPosition(position)
		reward := rewards.Referees[tier]
		results = append(results, models.SeasonResult{
			Position:    position,
			PlayerID:    entry.PlayerID,
			DisplayName: names[entry.PlayerID],
			Points:      entry.Points,
			Bonus:       reward.Bonus,
			Tier:        tier,
			Badge:       reward.Badge,
			Perks:       reward.Perks,
			Role:        models.ResultRoleReferee,
		})
	}
	return results
}

func (s *seasonService) displayNames(ctx context.Context, entries []*models.RankingEntry) (map[int]string, error) {
	names := make(map[int]string, len(entries))
	for _, entry := range entries {
		player, err := s.playerRepo.GetByID(ctx, entry.PlayerID)
		if err != nil {
			return nil, err
		}
		names[entry.PlayerID] = player.DisplayName
	}
	return names, nil
}
