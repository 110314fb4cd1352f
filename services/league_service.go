package services

import (
	"context"
	"errors"
	"strings"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
)

type LeagueService interface {
	CreateLeague(ctx context.Context, input CreateLeagueInput) (*models.League, error)
	GetLeague(ctx context.Context, id int) (*models.League, error)
	ListLeagues(ctx context.Context) ([]*models.League, error)
	// Join enrolls a player in the league standings so tournaments can
	// seed them. Idempotent.
	Join(ctx context.Context, leagueID, playerID int) (*models.RankingEntry, error)
	// Leaderboard returns the league's long-lived standings.
	Leaderboard(ctx context.Context, leagueID int) ([]*models.RankingEntry, error)
}

type CreateLeagueInput struct {
	Name string             `json:"name"`
	Mode models.ScoringMode `json:"mode"`
}

type leagueService struct {
	leagueRepo repositories.LeagueRepository
	ranking    RankingService
}

func NewLeagueService(leagueRepo repositories.LeagueRepository, ranking RankingService) LeagueService {
	return &leagueService{leagueRepo: leagueRepo, ranking: ranking}
}

func (s *leagueService) CreateLeague(ctx context.Context, input CreateLeagueInput) (*models.League, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("league name is required")
	}
	mode := input.Mode
	if mode == "" {
		mode = models.ScoringElo
	}
	if mode != models.ScoringElo && mode != models.ScoringSimple {
		return nil, errors.New("scoring mode must be elo or simple")
	}

	league := &models.League{Name: name, Mode: mode, Active: true}
	if err := s.leagueRepo.Create(ctx, nil, league); err != nil {
		return nil, err
	}
	return league, nil
}

func (s *leagueService) GetLeague(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return league, nil
}

func (s *leagueService) ListLeagues(ctx context.Context) ([]*models.League, error) {
	return s.leagueRepo.List(ctx)
}

func (s *leagueService) Join(ctx context.Context, leagueID, playerID int) (*models.RankingEntry, error) {
	league, err := s.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if !league.Active {
		return nil, ErrLeagueInactive
	}
	return s.ranking.Enroll(ctx, models.LeagueScope(leagueID), playerID)
}

func (s *leagueService) Leaderboard(ctx context.Context, leagueID int) ([]*models.RankingEntry, error) {
	if _, err := s.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	return s.ranking.Leaderboard(ctx, models.LeagueScope(leagueID))
}
