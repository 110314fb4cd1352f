package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
)

const (
	// InitialRating is the rating every player starts with, globally and
	// within each scope they first appear in.
	InitialRating = 1000.0

	eloK = 32.0
)

// EloExpectedScore returns the probability that a player rated ratingA beats
// a player rated ratingB under the standard Elo model.
func EloExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// MatchOutcome describes one resolved match for ranking purposes.
// RefereeID is nil for bracket matches, which are not refereed.
type MatchOutcome struct {
	WinnerID  int
	LoserID   int
	RefereeID *int
	Table     models.ScoringTable
}

// RankingService applies match outcomes to ranking scopes and produces
// ordered leaderboards.
type RankingService interface {
	// ApplyOutcome credits points and counters to the winner, loser and
	// optional referee within a scope, and keeps the players' global
	// aggregates in step. Under elo mode it also transfers rating between
	// winner and loser. The exec is the transaction the caller runs in.
	ApplyOutcome(ctx context.Context, exec repositories.SQLExecutor, scope models.Scope, mode models.ScoringMode, outcome MatchOutcome) error

	// Enroll ensures the player has an entry in the scope, seeded with
	// their current global rating. Idempotent.
	Enroll(ctx context.Context, scope models.Scope, playerID int) (*models.RankingEntry, error)

	// Leaderboard returns the scope's entries ordered by points with ties
	// broken by fewer losses and earlier first appearance, positions filled.
	Leaderboard(ctx context.Context, scope models.Scope) ([]*models.RankingEntry, error)
}

type rankingService struct {
	rankingRepo repositories.RankingRepository
	playerRepo  repositories.PlayerRepository
}

func NewRankingService(rankingRepo repositories.RankingRepository, playerRepo repositories.PlayerRepository) RankingService {
	return &rankingService{rankingRepo: rankingRepo, playerRepo: playerRepo}
}

func (s *rankingService) ApplyOutcome(ctx context.Context, exec repositories.SQLExecutor, scope models.Scope, mode models.ScoringMode, outcome MatchOutcome) error {
	winner, err := s.loadPlayer(ctx, outcome.WinnerID)
	if err != nil {
		return err
	}
	loser, err := s.loadPlayer(ctx, outcome.LoserID)
	if err != nil {
		return err
	}

	winnerEntry, err := s.rankingRepo.GetOrCreate(ctx, exec, scope, winner.ID, winner.Rating)
	if err != nil {
		return err
	}
	loserEntry, err := s.rankingRepo.GetOrCreate(ctx, exec, scope, loser.ID, loser.Rating)
	if err != nil {
		return err
	}

	var delta float64
	if mode == models.ScoringElo {
		delta = eloK * (1.0 - EloExpectedScore(winner.Rating, loser.Rating))
	}

	winnerEntry.Points += outcome.Table.Victory
	winnerEntry.Rating += delta
	winnerEntry.Played++
	winnerEntry.Wins++
	winnerEntry.Streak = continueStreak(winnerEntry.Streak, true)

	loserEntry.Points += outcome.Table.Defeat
	loserEntry.Rating -= delta
	loserEntry.Played++
	loserEntry.Losses++
	loserEntry.Streak = continueStreak(loserEntry.Streak, false)

	winner.Rating += delta
	winner.Wins++
	winner.Streak = continueStreak(winner.Streak, true)

	loser.Rating -= delta
	loser.Losses++
	loser.Streak = continueStreak(loser.Streak, false)

	if err := s.rankingRepo.Update(ctx, exec, winnerEntry); err != nil {
		return err
	}
	if err := s.rankingRepo.Update(ctx, exec, loserEntry); err != nil {
		return err
	}
	if err := s.playerRepo.UpdateAggregates(ctx, exec, winner); err != nil {
		return err
	}
	if err := s.playerRepo.UpdateAggregates(ctx, exec, loser); err != nil {
		return err
	}

	if outcome.RefereeID == nil {
		return nil
	}

	referee, err := s.loadPlayer(ctx, *outcome.RefereeID)
	if err != nil {
		return err
	}
	refEntry, err := s.rankingRepo.GetOrCreate(ctx, exec, scope, referee.ID, referee.Rating)
	if err != nil {
		return err
	}
	refEntry.Points += outcome.Table.Referee
	refEntry.Refereed++
	referee.Refereed++

	if err := s.rankingRepo.Update(ctx, exec, refEntry); err != nil {
		return err
	}
	return s.playerRepo.UpdateAggregates(ctx, exec, referee)
}

func (s *rankingService) Enroll(ctx context.Context, scope models.Scope, playerID int) (*models.RankingEntry, error) {
	player, err := s.loadPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return s.rankingRepo.GetOrCreate(ctx, nil, scope, player.ID, player.Rating)
}

func (s *rankingService) Leaderboard(ctx context.Context, scope models.Scope) ([]*models.RankingEntry, error) {
	entries, err := s.rankingRepo.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	for i, entry := range entries {
		position := i + 1
		if entry.Position == position {
			continue
		}
		entry.Position = position
		if err := s.rankingRepo.Update(ctx, nil, entry); err != nil {
			return nil, fmt.Errorf("failed to persist position for player %d: %w", entry.PlayerID, err)
		}
	}
	return entries, nil
}

func (s *rankingService) loadPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

// continueStreak extends a signed streak: wins grow a positive run, losses a
// negative one, and either breaks the opposite run back to ±1.
func continueStreak(streak int, won bool) int {
	if won {
		if streak > 0 {
			return streak + 1
		}
		return 1
	}
	if streak < 0 {
		return streak - 1
	}
	return -1
}
