package services

import (
	"context"
	"errors"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
)

type PlayerService interface {
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.List(ctx)
}
