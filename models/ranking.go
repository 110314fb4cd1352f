package models

import "time"

// ScopeKind selects the ranking table an entry belongs to: a league table
// (tournament play) or a season table (spontaneous play).
type ScopeKind string

const (
	ScopeLeague ScopeKind = "league"
	ScopeSeason ScopeKind = "season"
)

type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   int       `json:"id"`
}

func LeagueScope(id int) Scope { return Scope{Kind: ScopeLeague, ID: id} }
func SeasonScope(id int) Scope { return Scope{Kind: ScopeSeason, ID: id} }

// RankingEntry is the per-scope standing of a single player. It is recomputed
// whenever a match involving the player is validated or a tournament match
// concludes.
type RankingEntry struct {
	ID       int       `json:"id" db:"id"`
	Kind     ScopeKind `json:"kind" db:"kind"`
	ScopeID  int       `json:"scope_id" db:"scope_id"`
	PlayerID int       `json:"player_id" db:"player_id"`
	Points   int       `json:"points" db:"points"`
	Rating   float64   `json:"rating" db:"rating"`
	Played   int       `json:"played" db:"played"`
	Wins     int       `json:"wins" db:"wins"`
	Losses   int       `json:"losses" db:"losses"`
	Refereed int       `json:"refereed" db:"refereed"`
	// Streak is signed, same convention as Player.Streak.
	Streak    int       `json:"streak" db:"streak"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (e *RankingEntry) Scope() Scope { return Scope{Kind: e.Kind, ID: e.ScopeID} }
