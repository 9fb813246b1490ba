package domain

import "sort"

// Thread is the merged, ordered view of a two-party conversation built from
// independent one-directional batches. It is not safe for concurrent use;
// each thread is owned by a single goroutine.
type Thread struct {
	messages []Message
}

// NewThread creates an empty thread
func NewThread() *Thread {
	return &Thread{}
}

// MergeMessages replaces existing entries whose id appears in batch, appends the
// batch, and stable-sorts by creation time. Neither input is modified.
func MergeMessages(existing, batch []Message) []Message {
	incoming := make(map[string]struct{}, len(batch))
	for _, m := range batch {
		incoming[m.ID] = struct{}{}
	}

	merged := make([]Message, 0, len(existing)+len(batch))
	for _, m := range existing {
		if _, replaced := incoming[m.ID]; !replaced {
			merged = append(merged, m)
		}
	}

	// last occurrence wins when a batch repeats an id
	seen := make(map[string]struct{}, len(batch))
	tail := make([]Message, 0, len(batch))
	for i := len(batch) - 1; i >= 0; i-- {
		if _, dup := seen[batch[i].ID]; dup {
			continue
		}
		seen[batch[i].ID] = struct{}{}
		tail = append(tail, batch[i])
	}
	for i := len(tail) - 1; i >= 0; i-- {
		merged = append(merged, tail[i])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return createdBefore(merged[i], merged[j])
	})
	return merged
}

// Merge folds a batch into the thread and returns a copy of the result
func (t *Thread) Merge(batch []Message) []Message {
	t.messages = MergeMessages(t.messages, batch)
	return t.Messages()
}

// Remove drops messages by id
func (t *Thread) Remove(ids ...string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := t.messages[:0]
	for _, m := range t.messages {
		if _, ok := drop[m.ID]; !ok {
			kept = append(kept, m)
		}
	}
	t.messages = kept
}

// MarkRead flags the given ids as read and returns how many changed
func (t *Thread) MarkRead(ids ...string) int {
	if len(ids) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	changed := 0
	for i := range t.messages {
		if _, ok := set[t.messages[i].ID]; ok && !t.messages[i].IsRead {
			t.messages[i].IsRead = true
			changed++
		}
	}
	return changed
}

// Messages returns a copy of the ordered messages
func (t *Thread) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages in the thread
func (t *Thread) Len() int {
	return len(t.messages)
}

// UnreadFor lists ids of messages addressed to reader from sender that are still unread
func (t *Thread) UnreadFor(reader, sender string) []string {
	var ids []string
	for _, m := range t.messages {
		if m.ReceiverID == reader && m.SenderID == sender && !m.IsRead {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
