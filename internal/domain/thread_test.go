package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

var base = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func msg(id, from, to string, sec int) Message {
	m := Message{ID: id, SenderID: from, ReceiverID: to, Type: MessageText, Text: id}
	if sec >= 0 {
		m.CreatedAt = base.Add(time.Duration(sec) * time.Second)
	}
	return m
}

func ids(ms []Message) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestThread_MergeOutOfOrderDirections(t *testing.T) {
	th := NewThread()

	// B→A batch arrives before the A→B batch
	th.Merge([]Message{msg("m2", "B", "A", 2)})
	merged := th.Merge([]Message{msg("m1", "A", "B", 1)})

	assert.Equal(t, []string{"m1", "m2"}, ids(merged))
}

func TestThread_MergeIsIdempotent(t *testing.T) {
	th := NewThread()
	batch := []Message{msg("m1", "A", "B", 1), msg("m3", "A", "B", 3)}

	th.Merge([]Message{msg("m2", "B", "A", 2)})
	first := th.Merge(batch)
	second := th.Merge(batch)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, th.Len())
}

func TestThread_MergeReplacesById(t *testing.T) {
	th := NewThread()
	th.Merge([]Message{msg("m1", "A", "B", 1), msg("m2", "B", "A", 2)})

	updated := msg("m1", "A", "B", 1)
	updated.IsRead = true
	updated.Text = "edited"
	merged := th.Merge([]Message{updated})

	require.Len(t, merged, 2)
	assert.Equal(t, "edited", merged[0].Text)
	assert.True(t, merged[0].IsRead)
}

func TestThread_PendingTimestampsSortLastAndResolve(t *testing.T) {
	th := NewThread()
	th.Merge([]Message{msg("m1", "A", "B", 1), msg("m3", "B", "A", 3)})

	// optimistic insert without a server timestamp
	merged := th.Merge([]Message{msg("p1", "A", "B", -1), msg("p2", "A", "B", -1)})
	assert.Equal(t, []string{"m1", "m3", "p1", "p2"}, ids(merged))

	// server timestamp resolves between the two existing messages
	merged = th.Merge([]Message{msg("p1", "A", "B", 2)})
	assert.Equal(t, []string{"m1", "p1", "m3", "p2"}, ids(merged))
}

func TestThread_NonDecreasingAfterManyMerges(t *testing.T) {
	th := NewThread()
	th.Merge([]Message{msg("a5", "A", "B", 5), msg("a1", "A", "B", 1)})
	th.Merge([]Message{msg("b4", "B", "A", 4), msg("b2", "B", "A", 2)})
	merged := th.Merge([]Message{msg("a3", "A", "B", 3), msg("a5", "A", "B", 5)})

	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].CreatedAt.Before(merged[i-1].CreatedAt))
	}
	assert.Len(t, merged, 5)
}

func TestThread_BatchWithRepeatedIDKeepsLast(t *testing.T) {
	first := msg("m1", "A", "B", 1)
	last := msg("m1", "A", "B", 1)
	last.Text = "final"

	merged := MergeMessages(nil, []Message{first, last})
	require.Len(t, merged, 1)
	assert.Equal(t, "final", merged[0].Text)
}

func TestThread_RemoveAndUnread(t *testing.T) {
	th := NewThread()
	read := msg("m2", "B", "A", 2)
	read.IsRead = true
	th.Merge([]Message{msg("m1", "B", "A", 1), read, msg("m3", "A", "B", 3), msg("m4", "B", "A", 4)})

	assert.Equal(t, []string{"m1", "m4"}, th.UnreadFor("A", "B"))
	assert.Empty(t, th.UnreadFor("B", "C"))

	th.Remove("m4", "missing")
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(th.Messages()))

	snapshot := th.Messages()
	snapshot[0].Text = "mutated"
	assert.Equal(t, "m1", th.Messages()[0].Text)
}

func TestThread_MarkRead(t *testing.T) {
	th := NewThread()
	th.Merge([]Message{msg("m1", "B", "A", 1), msg("m2", "B", "A", 2), msg("m3", "A", "B", 3)})

	assert.Equal(t, 2, th.MarkRead("m1", "m2", "missing"))
	assert.Empty(t, th.UnreadFor("A", "B"))
	assert.Equal(t, 0, th.MarkRead("m1"))
	assert.Equal(t, 0, th.MarkRead())

	th.Merge([]Message{msg("m3", "A", "B", 3)})
	for _, m := range th.Messages() {
		if m.ID != "m3" {
			assert.True(t, m.IsRead, m.ID)
		}
	}
}

func TestMessage_ValidateAndPreview(t *testing.T) {
	tests := []struct {
		name string
		m    Message
		ok   bool
	}{
		{name: "text", m: Message{SenderID: "A", ReceiverID: "B", Type: MessageText, Text: "hi"}, ok: true},
		{name: "image", m: Message{SenderID: "A", ReceiverID: "B", Type: MessageImage, ImageURL: "u"}, ok: true},
		{name: "image_text", m: Message{SenderID: "A", ReceiverID: "B", Type: MessageImageText, Text: "hi", ImageURL: "u"}, ok: true},
		{name: "text with image", m: Message{SenderID: "A", ReceiverID: "B", Type: MessageText, Text: "hi", ImageURL: "u"}},
		{name: "image_text missing text", m: Message{SenderID: "A", ReceiverID: "B", Type: MessageImageText, ImageURL: "u"}},
		{name: "blank text", m: Message{SenderID: "A", ReceiverID: "B", Type: MessageText, Text: "  "}},
		{name: "self", m: Message{SenderID: "A", ReceiverID: "A", Type: MessageText, Text: "hi"}},
		{name: "unknown type", m: Message{SenderID: "A", ReceiverID: "B", Type: "video"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}

	assert.Equal(t, MessageImageText, MessageTypeFor("caption", "u"))
	assert.Equal(t, MessageImage, MessageTypeFor(" ", "u"))
	assert.Equal(t, MessageText, MessageTypeFor("hi", ""))
	assert.Equal(t, ImagePreview, Message{ImageURL: "u"}.Preview())
	assert.Equal(t, "hi", Message{Text: "hi"}.Preview())
}
