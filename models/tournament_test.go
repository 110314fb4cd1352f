package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchUID(t *testing.T) {
	assert.Equal(t, "R1M1", MatchUID(1, 1))
	assert.Equal(t, "R3M4", MatchUID(3, 4))
}

func TestNextMatch(t *testing.T) {
	testCases := []struct {
		name     string
		match    BracketMatch
		rounds   int
		wantUID  string
		wantSlot int
		wantOK   bool
	}{
		{
			name:     "odd order feeds slot 1",
			match:    BracketMatch{UID: "R1M1", Round: 1, OrderInRound: 1},
			rounds:   3,
			wantUID:  "R2M1",
			wantSlot: 1,
			wantOK:   true,
		},
		{
			name:     "even order feeds slot 2",
			match:    BracketMatch{UID: "R1M2", Round: 1, OrderInRound: 2},
			rounds:   3,
			wantUID:  "R2M1",
			wantSlot: 2,
			wantOK:   true,
		},
		{
			name:     "third match feeds second match of next round",
			match:    BracketMatch{UID: "R1M3", Round: 1, OrderInRound: 3},
			rounds:   3,
			wantUID:  "R2M2",
			wantSlot: 1,
			wantOK:   true,
		},
		{
			name:   "final feeds nothing",
			match:  BracketMatch{UID: "R2M1", Round: 2, OrderInRound: 1},
			rounds: 2,
			wantOK: false,
		},
		{
			name:   "third place feeds nothing",
			match:  BracketMatch{UID: ThirdPlaceUID, Round: 2, OrderInRound: 2},
			rounds: 2,
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uid, slot, ok := tc.match.NextMatch(tc.rounds)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantUID, uid)
				assert.Equal(t, tc.wantSlot, slot)
			}
		})
	}
}

func TestBracketMatchLoserID(t *testing.T) {
	a, b := 10, 20

	m := BracketMatch{SlotA: &a, SlotB: &b, WinnerID: &a}
	loser := m.LoserID()
	assert.NotNil(t, loser)
	assert.Equal(t, b, *loser)

	m.WinnerID = &b
	loser = m.LoserID()
	assert.NotNil(t, loser)
	assert.Equal(t, a, *loser)

	undecided := BracketMatch{SlotA: &a, SlotB: &b}
	assert.Nil(t, undecided.LoserID())
}

func TestTierForPosition(t *testing.T) {
	assert.Equal(t, TierChampion, PlayerTierForPosition(1))
	assert.Equal(t, TierTop3, PlayerTierForPosition(2))
	assert.Equal(t, TierTop3, PlayerTierForPosition(3))
	assert.Equal(t, TierTop10, PlayerTierForPosition(10))
	assert.Equal(t, TierTop25, PlayerTierForPosition(25))
	assert.Equal(t, TierParticipant, PlayerTierForPosition(26))

	assert.Equal(t, TierChampion, RefereeTierForPosition(1))
	assert.Equal(t, TierTop3, RefereeTierForPosition(3))
	assert.Equal(t, TierParticipant, RefereeTierForPosition(4))
}
