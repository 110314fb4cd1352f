package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinclub/pin-engine/models"
)

func TestSeedPositions(t *testing.T) {
	testCases := []struct {
		size     int
		expected []int
	}{
		{size: 1, expected: []int{0}},
		{size: 2, expected: []int{0, 1}},
		{size: 4, expected: []int{0, 3, 1, 2}},
		{size: 8, expected: []int{0, 7, 3, 4, 1, 6, 2, 5}},
		{size: 16, expected: []int{0, 15, 7, 8, 3, 12, 4, 11, 1, 14, 6, 9, 2, 13, 5, 10}},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("size %d", tc.size), func(t *testing.T) {
			assert.Equal(t, tc.expected, seedPositions(tc.size))
		})
	}
}

func testParticipants(n int) []models.Participant {
	participants := make([]models.Participant, 0, n)
	for i := 0; i < n; i++ {
		participants = append(participants, models.Participant{
			TournamentID: 1,
			PlayerID:     100 + i,
			Seed:         i + 1,
		})
	}
	return participants
}

func generate(t *testing.T, n int, thirdPlace bool) *GeneratedBracket {
	t.Helper()
	g := NewSingleEliminationGenerator()
	bracket, err := g.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament:   &models.Tournament{ID: 1, ThirdPlace: thirdPlace},
		Participants: testParticipants(n),
	})
	require.NoError(t, err)
	return bracket
}

func matchByUID(t *testing.T, bracket *GeneratedBracket, uid string) *models.BracketMatch {
	t.Helper()
	for _, m := range bracket.Matches {
		if m.UID == uid {
			return m
		}
	}
	t.Fatalf("match %s not found", uid)
	return nil
}

func TestGenerateBracketRejectsFewerThanTwo(t *testing.T) {
	g := NewSingleEliminationGenerator()
	for _, n := range []int{0, 1} {
		_, err := g.GenerateBracket(context.Background(), GenerateBracketParams{
			Tournament:   &models.Tournament{ID: 1},
			Participants: testParticipants(n),
		})
		assert.Error(t, err, "n=%d", n)
	}
}

func TestGenerateBracketShapes(t *testing.T) {
	testCases := []struct {
		n       int
		rounds  int
		matches int
		byes    int
	}{
		{n: 2, rounds: 1, matches: 1, byes: 0},
		{n: 3, rounds: 2, matches: 3, byes: 1},
		{n: 4, rounds: 2, matches: 3, byes: 0},
		{n: 5, rounds: 3, matches: 7, byes: 3},
		{n: 6, rounds: 3, matches: 7, byes: 2},
		{n: 7, rounds: 3, matches: 7, byes: 1},
		{n: 8, rounds: 3, matches: 7, byes: 0},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d participants", tc.n), func(t *testing.T) {
			bracket := generate(t, tc.n, false)
			assert.Equal(t, tc.rounds, bracket.Rounds)
			assert.Len(t, bracket.Matches, tc.matches)

			byes := 0
			for _, m := range bracket.Matches {
				if m.State == models.BracketBye {
					byes++
					require.NotNil(t, m.SlotA)
					assert.Nil(t, m.SlotB)
					require.NotNil(t, m.WinnerID)
					assert.Equal(t, *m.SlotA, *m.WinnerID)
				}
			}
			assert.Equal(t, tc.byes, byes)
		})
	}
}

func TestGenerateBracketFourPlayerPairings(t *testing.T) {
	bracket := generate(t, 4, false)

	m1 := matchByUID(t, bracket, "R1M1")
	require.NotNil(t, m1.SlotA)
	require.NotNil(t, m1.SlotB)
	assert.Equal(t, 100, *m1.SlotA) // seed 1
	assert.Equal(t, 103, *m1.SlotB) // seed 4

	m2 := matchByUID(t, bracket, "R1M2")
	require.NotNil(t, m2.SlotA)
	require.NotNil(t, m2.SlotB)
	assert.Equal(t, 101, *m2.SlotA) // seed 2
	assert.Equal(t, 102, *m2.SlotB) // seed 3

	final := matchByUID(t, bracket, "R2M1")
	assert.Nil(t, final.SlotA)
	assert.Nil(t, final.SlotB)
	assert.Equal(t, models.BracketPending, final.State)
}

func TestGenerateBracketByesFallOnTopSeeds(t *testing.T) {
	bracket := generate(t, 5, false)

	byeSeeds := make([]int, 0, 3)
	for _, m := range bracket.Matches {
		if m.State == models.BracketBye {
			byeSeeds = append(byeSeeds, *m.SlotA)
		}
	}
	// Seeds 1-3 (players 100-102) sit out round one when 5 enter a bracket
	// of 8.
	assert.ElementsMatch(t, []int{100, 101, 102}, byeSeeds)
}

func TestGenerateBracketAdvancesByeWinners(t *testing.T) {
	bracket := generate(t, 3, false)

	bye := matchByUID(t, bracket, "R1M1")
	require.Equal(t, models.BracketBye, bye.State)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, 100, *bye.WinnerID)

	final := matchByUID(t, bracket, "R2M1")
	require.NotNil(t, final.SlotA)
	assert.Equal(t, 100, *final.SlotA)
	assert.Nil(t, final.SlotB)
}

func TestGenerateBracketThirdPlace(t *testing.T) {
	bracket := generate(t, 4, true)
	require.Len(t, bracket.Matches, 4)

	third := matchByUID(t, bracket, models.ThirdPlaceUID)
	assert.Equal(t, bracket.Rounds, third.Round)
	assert.Equal(t, 2, third.OrderInRound)
	assert.Equal(t, models.BracketPending, third.State)
	assert.Nil(t, third.SlotA)
	assert.Nil(t, third.SlotB)
}

func TestGenerateBracketNoThirdPlaceForTwoPlayers(t *testing.T) {
	// A two-player tournament has no semifinals, so no consolation match.
	bracket := generate(t, 2, true)
	assert.Len(t, bracket.Matches, 1)
}
