package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/repositories"
	"github.com/pinclub/pin-engine/utils"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Player, error)
	Login(ctx context.Context, input LoginInput) (*models.Player, error)
}

type RegisterInput struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	playerRepo repositories.PlayerRepository
}

func NewAuthService(playerRepo repositories.PlayerRepository) AuthService {
	return &authService{playerRepo: playerRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Player, error) {
	displayName := strings.TrimSpace(input.DisplayName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if displayName == "" || email == "" || len(input.Password) < 8 {
		return nil, ErrAuthInvalidInput
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	player := &models.Player{
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RolePlayer,
		Rating:       InitialRating,
	}

	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Player, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	player, err := s.playerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find player by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, player.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}
	return player, nil
}
