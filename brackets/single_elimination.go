package brackets

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/utils"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// seedPositions returns the 0-based seed occupying each slot of a full
// bracket of the given size, in slot order. Consecutive pairs form the first
// round, so seed 0 meets seed size-1, seed 1 meets seed size-2, and so on,
// with the top seeds spread maximally apart. The lower seed of each pair
// always comes first.
func seedPositions(bracketSize int) []int {
	positions := []int{0}
	for len(positions) < bracketSize {
		next := make([]int, 0, len(positions)*2)
		mirror := len(positions)*2 - 1
		for _, seed := range positions {
			next = append(next, seed, mirror-seed)
		}
		positions = next
	}
	return positions
}

// GenerateBracket builds every round of a single-elimination bracket for two
// or more participants. When the participant count is not a power of two the
// missing high seeds become byes, which land on the top seeds; a bye match is
// created already decided, with its sole occupant pre-advanced into the next
// round. A single participant is the caller's boundary case and is rejected
// here.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*GeneratedBracket, error) {
	participants := params.Participants
	n := len(participants)
	if n < 2 {
		return nil, errors.New("single elimination requires at least 2 participants")
	}

	tournamentID := params.Tournament.ID
	rounds := int(math.Ceil(math.Log2(float64(n))))
	size := 1 << uint(rounds)

	matches := make([]*models.BracketMatch, 0, size)
	byUID := make(map[string]*models.BracketMatch, size)

	add := func(m *models.BracketMatch) {
		matches = append(matches, m)
		byUID[m.UID] = m
	}

	// First round from the seed table. The first slot of every pair holds a
	// seed below size/2, which always exists, so only the second slot can be
	// a bye.
	positions := seedPositions(size)
	for i := 0; i < size; i += 2 {
		order := i/2 + 1
		m := &models.BracketMatch{
			TournamentID: tournamentID,
			UID:          models.MatchUID(1, order),
			Round:        1,
			OrderInRound: order,
			State:        models.BracketPending,
		}
		seedA, seedB := positions[i], positions[i+1]
		if seedA >= n {
			return nil, fmt.Errorf("seed table produced slot for seed %d with only %d participants", seedA, n)
		}
		m.SlotA = utils.Ptr(participants[seedA].PlayerID)
		if seedB < n {
			m.SlotB = utils.Ptr(participants[seedB].PlayerID)
		} else {
			m.State = models.BracketBye
			m.WinnerID = m.SlotA
		}
		add(m)
	}

	// Later rounds hold placeholders until earlier rounds resolve.
	for r := 2; r <= rounds; r++ {
		count := size >> uint(r)
		for o := 1; o <= count; o++ {
			add(&models.BracketMatch{
				TournamentID: tournamentID,
				UID:          models.MatchUID(r, o),
				Round:        r,
				OrderInRound: o,
				State:        models.BracketPending,
			})
		}
	}

	// Advance bye occupants into their next-round slots immediately.
	for _, m := range matches {
		if m.State != models.BracketBye {
			continue
		}
		nextUID, slot, ok := m.NextMatch(rounds)
		if !ok {
			continue
		}
		next := byUID[nextUID]
		if slot == 1 {
			next.SlotA = m.WinnerID
		} else {
			next.SlotB = m.WinnerID
		}
	}

	if params.Tournament.ThirdPlace && rounds >= 2 {
		add(&models.BracketMatch{
			TournamentID: tournamentID,
			UID:          models.ThirdPlaceUID,
			Round:        rounds,
			OrderInRound: 2,
			State:        models.BracketPending,
		})
	}

	return &GeneratedBracket{Rounds: rounds, Matches: matches}, nil
}
