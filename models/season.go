package models

import "time"

type SeasonState string

const (
	SeasonActive SeasonState = "active"
	SeasonClosed SeasonState = "closed"
)

// RapidSeason is a bounded window over which spontaneous-match points
// accumulate. Closing it is terminal.
type RapidSeason struct {
	ID        int         `json:"id" db:"id"`
	LeagueID  *int        `json:"league_id,omitempty" db:"league_id"`
	Name      string      `json:"name" db:"name"`
	State     SeasonState `json:"state" db:"state"`
	StartsAt  time.Time   `json:"starts_at" db:"starts_at"`
	EndsAt    time.Time   `json:"ends_at" db:"ends_at"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

type ResultRole string

const (
	ResultRolePlayer  ResultRole = "player"
	ResultRoleReferee ResultRole = "referee"
)

// SeasonResult is one line of a season's final standings.
type SeasonResult struct {
	Position    int        `json:"position"`
	PlayerID    int        `json:"player_id"`
	DisplayName string     `json:"display_name"`
	Points      int        `json:"points"`
	Bonus       int        `json:"bonus"`
	Tier        TierName   `json:"tier"`
	Badge       *Badge     `json:"badge,omitempty"`
	Perks       []string   `json:"perks,omitempty"`
	Role        ResultRole `json:"role"`
}

// SeasonCloseResult is persisted exactly once when a season closes.
type SeasonCloseResult struct {
	SeasonID       int            `json:"season_id"`
	ClosedAt       time.Time      `json:"closed_at"`
	PlayerResults  []SeasonResult `json:"player_results"`
	RefereeResults []SeasonResult `json:"referee_results"`
	TotalMatches   int            `json:"total_matches"`
}
