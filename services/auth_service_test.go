package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinclub/pin-engine/models"
)

func TestRegisterNormalizesInput(t *testing.T) {
	e := newEnv(t)

	player, err := e.auth.Register(context.Background(), RegisterInput{
		DisplayName: "  Ana  ",
		Email:       " Ana@Club.TEST ",
		Password:    "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ana", player.DisplayName)
	assert.Equal(t, "ana@club.test", player.Email)
	assert.Equal(t, models.RolePlayer, player.Role)
	assert.InDelta(t, InitialRating, player.Rating, 0.001)
	assert.NotEqual(t, "correct horse", player.PasswordHash)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"blank name", RegisterInput{DisplayName: "  ", Email: "a@b.test", Password: "correct horse"}},
		{"blank email", RegisterInput{DisplayName: "Ana", Email: "", Password: "correct horse"}},
		{"short password", RegisterInput{DisplayName: "Ana", Email: "a@b.test", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.auth.Register(ctx, tt.input)
			assert.ErrorIs(t, err, ErrAuthInvalidInput)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPlayer(t, "ana")

	_, err := e.auth.Register(ctx, RegisterInput{
		DisplayName: "Other Ana",
		Email:       "ANA@club.test",
		Password:    "correct horse",
	})
	assert.ErrorIs(t, err, ErrEmailConflict)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	player := e.addPlayer(t, "ana")

	got, err := e.auth.Login(ctx, LoginInput{Email: " ANA@club.test ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, player.ID, got.ID)

	_, err = e.auth.Login(ctx, LoginInput{Email: "ana@club.test", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = e.auth.Login(ctx, LoginInput{Email: "nobody@club.test", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
