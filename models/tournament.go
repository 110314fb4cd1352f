package models

import (
	"fmt"
	"time"
)

type TournamentStatus string

const (
	TournamentDraft      TournamentStatus = "draft"
	TournamentInProgress TournamentStatus = "in_progress"
	TournamentFinalized  TournamentStatus = "finalized"
)

// Tournament is a single-elimination event seeded from its league's ranking.
// Rounds is fixed at bracket generation time; ChampionID is set when the
// final resolves (or immediately for a single-participant tournament).
type Tournament struct {
	ID         int              `json:"id" db:"id"`
	LeagueID   int              `json:"league_id" db:"league_id"`
	Name       string           `json:"name" db:"name"`
	Status     TournamentStatus `json:"status" db:"status"`
	StartDate  time.Time        `json:"start_date" db:"start_date"`
	ThirdPlace bool             `json:"third_place" db:"third_place"`
	Rounds     int              `json:"rounds" db:"rounds"`
	ChampionID *int             `json:"champion_id,omitempty" db:"champion_id"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	// Populated by the service layer, not mapped directly.
	Participants []Participant `json:"participants,omitempty" db:"-"`
}

// Participant is a player snapshotted from the league ranking at bracket
// generation time. Seed 1 is the best-ranked player.
type Participant struct {
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	PlayerID     int    `json:"player_id" db:"player_id"`
	Seed         int    `json:"seed" db:"seed"`
	DisplayName  string `json:"display_name" db:"display_name"`
}

type BracketMatchState string

const (
	BracketPending  BracketMatchState = "pending"
	BracketBye      BracketMatchState = "bye"
	BracketFinished BracketMatchState = "finished"
)

// ThirdPlaceUID identifies the optional consolation match fed by the
// semifinal losers.
const ThirdPlaceUID = "3P"

// BracketMatch is one node of a tournament bracket, identified inside its
// tournament by a deterministic UID of the form "R<round>M<order>". Nil
// slots are placeholders until an earlier round produces the occupant; a
// bye match carries its sole occupant in slot A with the winner pre-set.
type BracketMatch struct {
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	UID          string            `json:"uid" db:"uid"`
	Round        int               `json:"round" db:"round"`
	OrderInRound int               `json:"order_in_round" db:"order_in_round"`
	SlotA        *int              `json:"slot_a,omitempty" db:"slot_a"`
	SlotB        *int              `json:"slot_b,omitempty" db:"slot_b"`
	WinnerID     *int              `json:"winner_id,omitempty" db:"winner_id"`
	ScoreA       int               `json:"score_a" db:"score_a"`
	ScoreB       int               `json:"score_b" db:"score_b"`
	State        BracketMatchState `json:"state" db:"state"`
}

// MatchUID builds the deterministic identity for round r, order o (1-based).
func MatchUID(round, order int) string {
	return fmt.Sprintf("R%dM%d", round, order)
}

// NextMatch returns the UID and slot (1 or 2) the winner of this match feeds,
// given the tournament's total round count. The final and the third-place
// match feed nothing.
func (m *BracketMatch) NextMatch(rounds int) (string, int, bool) {
	if m.UID == ThirdPlaceUID || m.Round >= rounds {
		return "", 0, false
	}
	slot := 2
	if m.OrderInRound%2 == 1 {
		slot = 1
	}
	return MatchUID(m.Round+1, (m.OrderInRound+1)/2), slot, true
}

// IsSemifinal reports whether the match belongs to the next-to-last round.
func (m *BracketMatch) IsSemifinal(rounds int) bool {
	return rounds >= 2 && m.Round == rounds-1
}

// Occupies reports whether playerID currently holds one of the two slots.
func (m *BracketMatch) Occupies(playerID int) bool {
	return (m.SlotA != nil && *m.SlotA == playerID) ||
		(m.SlotB != nil && *m.SlotB == playerID)
}

// LoserID returns the occupant that did not win, if the match is decided
// between two known occupants.
func (m *BracketMatch) LoserID() *int {
	if m.WinnerID == nil || m.SlotA == nil || m.SlotB == nil {
		return nil
	}
	if *m.WinnerID == *m.SlotA {
		return m.SlotB
	}
	return m.SlotA
}
