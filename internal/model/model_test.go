package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		ok       bool
	}{
		{SessionRequested, SessionConfirmed, true},
		{SessionRequested, SessionCompleted, true},
		{SessionRequested, SessionCancelled, true},
		{SessionConfirmed, SessionCompleted, true},
		{SessionConfirmed, SessionCancelled, true},
		{SessionConfirmed, SessionRequested, false},
		{SessionCompleted, SessionCancelled, false},
		{SessionCancelled, SessionConfirmed, false},
		{SessionRequested, SessionRequested, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestVoteDelta(t *testing.T) {
	assert.Equal(t, 1, VoteUp.Delta())
	assert.Equal(t, -1, VoteDown.Delta())
}

func TestOptionListRoundTrip(t *testing.T) {
	q := AttemptQuestion{Options: OptionsJSON([]string{"2", "4", "6"})}
	assert.Equal(t, []string{"2", "4", "6"}, q.OptionList())

	empty := AttemptQuestion{}
	assert.Empty(t, empty.OptionList())
}

func TestSurveyClosedAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&Survey{}).ClosedAt(now))
	assert.True(t, (&Survey{ClosesAt: &past}).ClosedAt(now))
	assert.False(t, (&Survey{ClosesAt: &future}).ClosedAt(now))
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "ana", (&User{Username: "ana"}).FullName())
	assert.Equal(t, "Ana", (&User{Username: "ana", FirstName: "Ana"}).FullName())
	assert.Equal(t, "Ana Ruiz", (&User{FirstName: "Ana", LastName: "Ruiz"}).FullName())
}
