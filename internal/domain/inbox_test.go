package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInbox(t *testing.T) {
	readOld := msg("s1-old", "S1", "L", 1)
	readOld.IsRead = true
	image := Message{ID: "a1", SenderID: "A1", ReceiverID: "L", Type: MessageImage, ImageURL: "u", CreatedAt: base.Add(9e9)}

	inbound := []Message{
		readOld,
		msg("s1-new", "S1", "L", 5),
		msg("s2-a", "S2", "L", 3),
		msg("s2-b", "S2", "L", 2),
		image,
		msg("self", "L", "L", 10),
		msg("elsewhere", "S1", "X", 20),
	}

	summaries := BuildInbox("L", inbound)
	require.Len(t, summaries, 3)

	assert.Equal(t, "A1", summaries[0].CounterpartID)
	assert.Equal(t, 1, summaries[0].UnreadCount)
	assert.Equal(t, ImagePreview, summaries[0].Latest.Preview())

	assert.Equal(t, "S1", summaries[1].CounterpartID)
	assert.Equal(t, 1, summaries[1].UnreadCount)
	assert.Equal(t, "s1-new", summaries[1].Latest.ID)

	assert.Equal(t, "S2", summaries[2].CounterpartID)
	assert.Equal(t, 2, summaries[2].UnreadCount)
	assert.Equal(t, "s2-a", summaries[2].Latest.ID)

	assert.Equal(t, 4, TotalUnread(summaries))
}

func TestBuildInbox_Empty(t *testing.T) {
	assert.Empty(t, BuildInbox("L", nil))
	assert.Equal(t, 0, TotalUnread(nil))
}

func TestBuildInbox_TiesOrderedByCounterpart(t *testing.T) {
	summaries := BuildInbox("L", []Message{msg("b", "B", "L", 1), msg("a", "A", "L", 1)})
	require.Len(t, summaries, 2)
	assert.Equal(t, "A", summaries[0].CounterpartID)
	assert.Equal(t, "B", summaries[1].CounterpartID)
}
