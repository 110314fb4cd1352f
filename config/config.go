package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pinclub/pin-engine/models"
)

// Game modes the scoring table is keyed by.
const (
	ModeRapid = "rapid"
	ModeSuper = "super"
)

// Config holds all environment-driven application settings.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	return &Config{
		DatabaseURL:       dbURL,
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}, nil
}

// DefaultScoring returns the per-game-mode point tables. Rapid Pin awards
// the referee; Super Pin (tournament play) does not use a referee.
func DefaultScoring() map[string]models.ScoringTable {
	return map[string]models.ScoringTable{
		ModeRapid: {Victory: 3, Defeat: 1, Referee: 2},
		ModeSuper: {Victory: 3, Defeat: 1, Referee: 0},
	}
}

// DefaultRewards returns the season-close payout tables for players and
// referees.
func DefaultRewards() models.RewardTable {
	return models.RewardTable{
		Players: map[models.TierName]models.RewardTier{
			models.TierChampion: {
				Tier:  models.TierChampion,
				Bonus: 500,
				Badge: &models.Badge{
					Rarity: models.RarityLegendary,
					Names:  map[string]string{"es": "Campeón de temporada", "en": "Season champion"},
				},
				Perks: []string{"season_trophy", "front_page_feature"},
			},
			models.TierTop3: {
				Tier:  models.TierTop3,
				Bonus: 250,
				Badge: &models.Badge{
					Rarity: models.RarityEpic,
					Names:  map[string]string{"es": "Podio de temporada", "en": "Season podium"},
				},
			},
			models.TierTop10: {
				Tier:  models.TierTop10,
				Bonus: 100,
				Badge: &models.Badge{
					Rarity: models.RarityRare,
					Names:  map[string]string{"es": "Top 10 de temporada", "en": "Season top 10"},
				},
			},
			models.TierTop25: {
				Tier:  models.TierTop25,
				Bonus: 50,
				Badge: &models.Badge{
					Rarity: models.RarityCommon,
					Names:  map[string]string{"es": "Top 25 de temporada", "en": "Season top 25"},
				},
			},
			models.TierParticipant: {
				Tier:  models.TierParticipant,
				Bonus: 10,
			},
		},
		Referees: map[models.TierName]models.RewardTier{
			models.TierChampion: {
				Tier:  models.TierChampion,
				Bonus: 200,
				Badge: &models.Badge{
					Rarity: models.RarityEpic,
					Names:  map[string]string{"es": "Árbitro del año", "en": "Referee of the year"},
				},
			},
			models.TierTop3: {
				Tier:  models.TierTop3,
				Bonus: 100,
				Badge: &models.Badge{
					Rarity: models.RarityRare,
					Names:  map[string]string{"es": "Árbitro destacado", "en": "Distinguished referee"},
				},
			},
			models.TierParticipant: {
				Tier:  models.TierParticipant,
				Bonus: 25,
			},
		},
	}
}
