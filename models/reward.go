package models

// TierName is a rank bracket assigned at season close.
type TierName string

const (
	TierChampion    TierName = "champion"
	TierTop3        TierName = "top3"
	TierTop10       TierName = "top10"
	TierTop25       TierName = "top25"
	TierParticipant TierName = "participant"
)

type BadgeRarity string

const (
	RarityLegendary BadgeRarity = "legendary"
	RarityEpic      BadgeRarity = "epic"
	RarityRare      BadgeRarity = "rare"
	RarityCommon    BadgeRarity = "common"
)

// Badge is the collectible attached to a reward tier. Names is keyed by
// language code ("es", "en", ...).
type Badge struct {
	Rarity  BadgeRarity       `json:"rarity"`
	Names   map[string]string `json:"names"`
	IconURL string            `json:"icon_url,omitempty"`
}

// RewardTier describes what a tier pays out at season close.
type RewardTier struct {
	Tier  TierName `json:"tier"`
	Bonus int      `json:"bonus"`
	Badge *Badge   `json:"badge,omitempty"`
	Perks []string `json:"perks,omitempty"`
}

// RewardTable holds the tier payouts for players and referees separately.
type RewardTable struct {
	Players  map[TierName]RewardTier `json:"players"`
	Referees map[TierName]RewardTier `json:"referees"`
}

// PlayerTierForPosition maps a 1-based final position to its player tier.
func PlayerTierForPosition(pos int) TierName {
	switch {
	case pos == 1:
		return TierChampion
	case pos <= 3:
		return TierTop3
	case pos <= 10:
		return TierTop10
	case pos <= 25:
		return TierTop25
	default:
		return TierParticipant
	}
}

// RefereeTierForPosition maps a 1-based referee position to its tier. The
// referee ladder is shorter than the player one.
func RefereeTierForPosition(pos int) TierName {
	switch {
	case pos == 1:
		return TierChampion
	case pos <= 3:
		return TierTop3
	default:
		return TierParticipant
	}
}

// ScoringTable maps match roles to the points a validated outcome awards.
type ScoringTable struct {
	Victory int `json:"victory"`
	Defeat  int `json:"defeat"`
	Referee int `json:"referee"`
}
