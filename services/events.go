package services

import (
	"fmt"

	"github.com/google/uuid"
)

// Event types pushed to websocket subscribers.
const (
	EventMatchValidated      = "MATCH_VALIDATED"
	EventBracketGenerated    = "BRACKET_GENERATED"
	EventBracketAdvanced     = "BRACKET_ADVANCED"
	EventTournamentFinalized = "TOURNAMENT_FINALIZED"
	EventSeasonClosed        = "SEASON_CLOSED"
)

// Event is the envelope broadcast to a room after a state change.
type Event struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func newEvent(eventType string, payload interface{}) Event {
	return Event{ID: uuid.NewString(), Type: eventType, Payload: payload}
}

// EventBroadcaster delivers events to all subscribers of a room.
// *brackets.Hub satisfies it.
type EventBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// SeasonRoom is the room key for a season's event stream.
func SeasonRoom(seasonID int) string {
	return fmt.Sprintf("season:%d", seasonID)
}

// TournamentRoom is the room key for a tournament's event stream.
func TournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament:%d", tournamentID)
}

// NopBroadcaster discards all events. Used in tests and when no hub is wired.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastToRoom(string, interface{}) {}
