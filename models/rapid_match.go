package models

import (
	"time"

	"github.com/google/uuid"
)

type RapidMatchState string

const (
	RapidMatchPending   RapidMatchState = "pending"
	RapidMatchValidated RapidMatchState = "validated"
)

// RapidMatch is a spontaneous match between two players overseen by a
// referee. It is registered by one participant and stays pending until a
// different participant confirms it; only then are points awarded.
type RapidMatch struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	SeasonID     int             `json:"season_id" db:"season_id"`
	PlayerAID    int             `json:"player_a_id" db:"player_a_id"`
	PlayerBID    int             `json:"player_b_id" db:"player_b_id"`
	RefereeID    int             `json:"referee_id" db:"referee_id"`
	WinnerID     int             `json:"winner_id" db:"winner_id"`
	ScoreWinner  int             `json:"score_winner" db:"score_winner"`
	ScoreLoser   int             `json:"score_loser" db:"score_loser"`
	RegistrantID int             `json:"registrant_id" db:"registrant_id"`
	ConfirmerID  *int            `json:"confirmer_id,omitempty" db:"confirmer_id"`
	State        RapidMatchState `json:"state" db:"state"`

	// Points stay zero while pending and are set exactly once on validation.
	WinnerPoints  int `json:"winner_points" db:"winner_points"`
	LoserPoints   int `json:"loser_points" db:"loser_points"`
	RefereePoints int `json:"referee_points" db:"referee_points"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ValidatedAt *time.Time `json:"validated_at,omitempty" db:"validated_at"`
}

// HasParticipant reports whether id is one of the three match participants.
func (m *RapidMatch) HasParticipant(id int) bool {
	return id == m.PlayerAID || id == m.PlayerBID || id == m.RefereeID
}

// LoserID returns the player who lost the declared result.
func (m *RapidMatch) LoserID() int {
	if m.WinnerID == m.PlayerAID {
		return m.PlayerBID
	}
	return m.PlayerAID
}
