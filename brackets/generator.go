package brackets

import (
	"context"

	"github.com/pinclub/pin-engine/models"
)

type GenerateBracketParams struct {
	Tournament *models.Tournament
	// Participants ordered best to worst; Seed fields must be 1..n.
	Participants []models.Participant
}

// GeneratedBracket is the full structure produced up front: every round's
// matches exist immediately, with nil slots where a prior round has not yet
// produced a winner.
type GeneratedBracket struct {
	Rounds  int
	Matches []*models.BracketMatch
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*GeneratedBracket, error)

	GetName() string
}
