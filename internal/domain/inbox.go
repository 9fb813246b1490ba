package domain

import "sort"

// ThreadSummary is one row of a chat list
type ThreadSummary struct {
	CounterpartID string
	UnreadCount   int
	Latest        Message
}

// BuildInbox folds the messages addressed to self into one summary per sender.
// Messages not addressed to self, or sent by self, are ignored. Summaries are
// ordered newest first.
func BuildInbox(self string, inbound []Message) []ThreadSummary {
	byCounterpart := make(map[string]*ThreadSummary)
	for _, m := range inbound {
		if m.ReceiverID != self || m.SenderID == self || m.SenderID == "" {
			continue
		}
		summary, ok := byCounterpart[m.SenderID]
		if !ok {
			summary = &ThreadSummary{CounterpartID: m.SenderID, Latest: m}
			byCounterpart[m.SenderID] = summary
		} else if createdBefore(summary.Latest, m) {
			summary.Latest = m
		}
		if !m.IsRead {
			summary.UnreadCount++
		}
	}

	summaries := make([]ThreadSummary, 0, len(byCounterpart))
	for _, s := range byCounterpart {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if createdBefore(b.Latest, a.Latest) {
			return true
		}
		if createdBefore(a.Latest, b.Latest) {
			return false
		}
		return a.CounterpartID < b.CounterpartID
	})
	return summaries
}

// TotalUnread sums unread counts across summaries
func TotalUnread(summaries []ThreadSummary) int {
	total := 0
	for _, s := range summaries {
		total += s.UnreadCount
	}
	return total
}
