package services

import "errors"

// Sentinel errors shared across services and mapped to HTTP statuses in the
// handlers package.
var (
	// Not-found errors.
	ErrPlayerNotFound       = errors.New("player not found")
	ErrLeagueNotFound       = errors.New("league not found")
	ErrSeasonNotFound       = errors.New("season not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrBracketMatchNotFound = errors.New("bracket match not found")
	ErrCloseResultNotFound  = errors.New("season close result not found")

	// Validation and business-rule errors.
	ErrInvalidParticipants      = errors.New("match participants are invalid")
	ErrInvalidConfirmer         = errors.New("confirmer must be a participant other than the registrant")
	ErrInvalidWinner            = errors.New("winner is not an occupant of this match")
	ErrLeagueInactive           = errors.New("league is not active")
	ErrSeasonNotActive          = errors.New("season is not active")
	ErrTournamentInvalidStatus  = errors.New("tournament is not in a valid status for this operation")
	ErrTournamentNoParticipants = errors.New("tournament has no eligible participants")
	ErrBracketMatchNotReady     = errors.New("bracket match does not have both occupants yet")

	// Conflict errors.
	ErrMatchAlreadyValidated = errors.New("match is already validated")
	ErrSeasonAlreadyClosed   = errors.New("season is already closed")
	ErrBracketMatchBye       = errors.New("bracket match is a bye and cannot receive a result")
	ErrBracketMatchFinished  = errors.New("bracket match is already finished")

	// Authentication errors.
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthInvalidInput       = errors.New("display name, email and a password of at least 8 characters are required")
	ErrEmailConflict          = errors.New("email address is already in use")
)
