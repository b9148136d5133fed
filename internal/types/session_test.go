//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionID_UnmarshalJSON(t *testing.T) {
	var q Question
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "question": "Explain overfitting"}`), &q))
	assert.Equal(t, QuestionID("3"), q.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "q-7"}`), &q))
	assert.Equal(t, QuestionID("q-7"), q.ID)
}

func TestWeakTopic_UnmarshalJSON(t *testing.T) {
	var topics []WeakTopic
	input := `["statistics", {"topic": "SQL", "priority": "high"}]`
	require.NoError(t, json.Unmarshal([]byte(input), &topics))
	require.Len(t, topics, 2)
	assert.Equal(t, "statistics", topics[0].Topic)
	assert.Equal(t, "SQL", topics[1].Topic)
	assert.Equal(t, "high", topics[1].Priority)
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestInterviewSession_Lookups(t *testing.T) {
	r1, r2 := uuid.New(), uuid.New()
	s := &InterviewSession{
		Rounds: []InterviewRound{
			{ID: r1, RoundNumber: 1, Status: StatusCompleted},
			{ID: r2, RoundNumber: 2, Status: StatusInProgress, Questions: []Question{{ID: "1", Question: "Q1"}}},
		},
		WeakTopics: []WeakTopic{{Topic: "a"}, {Topic: ""}, {Topic: "b"}, {Topic: "c"}, {Topic: "d"}},
	}

	round, ok := s.FindRound(r2)
	require.True(t, ok)
	assert.Equal(t, 2, round.RoundNumber)

	_, ok = s.FindRound(uuid.New())
	assert.False(t, ok)

	q, ok := round.FindQuestion("1")
	require.True(t, ok)
	assert.Equal(t, "Q1", q.Question)
	_, ok = round.FindQuestion("9")
	assert.False(t, ok)

	last, ok := s.LastCompletedRound()
	require.True(t, ok)
	assert.Equal(t, r1, last.ID)

	assert.Equal(t, []string{"a", "b", "c"}, s.TopWeakTopics(3))
}

func TestUser_RecordRoundScore(t *testing.T) {
	u := &User{}
	want := []float64{62, 71, 80.5}
	for i, score := range []float64{62, 80, 90} {
		u.RecordRoundScore(score)
		assert.InDelta(t, want[i], u.AverageScore, 1e-9)
	}
	assert.Equal(t, 3, u.ScoredRounds)
}

func TestUser_Public(t *testing.T) {
	u := &User{ID: uuid.New(), Name: "Ada", PasswordHash: "hash"}
	p := u.Public()
	assert.True(t, p.PasswordSet)
	assert.Equal(t, "Ada", p.Name)

	var nilUser *User
	assert.Nil(t, nilUser.Public())
}
