package models

import "time"

// ScoringMode controls how validated outcomes move a league's ranking:
// Elo rating adjustment or plain point accumulation.
type ScoringMode string

const (
	ScoringElo    ScoringMode = "elo"
	ScoringSimple ScoringMode = "simple"
)

type League struct {
	ID        int         `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Mode      ScoringMode `json:"mode" db:"mode"`
	Active    bool        `json:"active" db:"active"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
