package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConversationIDIsOrderIndependent(t *testing.T) {
	assert.Equal(t, ConversationID("alice", "bob"), ConversationID("bob", "alice"))
	assert.Equal(t, "alice_bob", ConversationID("bob", "alice"))
}

func TestNewConversationUnreadHasBothParticipants(t *testing.T) {
	c := NewConversation(Participant{ID: "u2", Name: "Bo"}, Participant{ID: "u1", Name: "Al"}, time.Now())
	assert.Equal(t, []string{"u1", "u2"}, c.ParticipantIDs)
	assert.Equal(t, map[string]int{"u1": 0, "u2": 0}, c.UnreadCount)
	assert.Equal(t, "Bo", c.ParticipantNames["u2"])
}

func TestNormalizeDropsStrangersAndNegatives(t *testing.T) {
	c := Conversation{
		ParticipantIDs: []string{"a", "b"},
		UnreadCount:    map[string]int{"a": -3, "x": 4},
	}
	c.Normalize()
	assert.Equal(t, map[string]int{"a": 0, "b": 0}, c.UnreadCount)
}

func TestConversationOther(t *testing.T) {
	c := NewConversation(Participant{ID: "a"}, Participant{ID: "b"}, time.Now())
	assert.Equal(t, "b", c.Other("a"))
	assert.Equal(t, "a", c.Other("b"))
	assert.Equal(t, "", c.Other("z"))
}

func TestRequestStatusTerminal(t *testing.T) {
	assert.False(t, RequestPending.Terminal())
	assert.True(t, RequestAccepted.Terminal())
	assert.True(t, RequestDeclined.Terminal())
}

func TestDocumentKeys(t *testing.T) {
	assert.Equal(t, "|a|b|", JoinKeys([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, SplitKeys("|a|b|"))
	assert.Nil(t, SplitKeys(""))
	assert.Equal(t, "%|a|%", KeyPattern("a"))
}

func TestKeyPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%|alice!_bob|%", KeyPattern("alice_bob"))
	assert.Equal(t, "%|50!%!!|%", KeyPattern("50%!"))
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("alice_bob"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("a|b"))
}
