package realtime

import "strings"

const sep = ":"

// MessagesTopic covers direct messages sent from sender to receiver
func MessagesTopic(senderID, receiverID string) string {
	return strings.Join([]string{"messages", senderID, receiverID}, sep)
}

// InboxTopic covers every direct message addressed to receiver
func InboxTopic(receiverID string) string {
	return "inbox" + sep + receiverID
}

// ConsultationsTopic covers the consultations of one lecturer
func ConsultationsTopic(lecturerID string) string {
	return "consultations" + sep + "lecturer" + sep + lecturerID
}

// NotificationsTopic covers the notifications of one lecturer
func NotificationsTopic(lecturerID string) string {
	return "notifications" + sep + "lecturer" + sep + lecturerID
}

// CommunityTopic covers the messages of one community
func CommunityTopic(communityID string) string {
	return "community" + sep + communityID
}

// EventsTopic covers the campus event list shared by every lecturer
func EventsTopic() string {
	return "events"
}

// MessageTopics lists every topic a change to one direct message touches
func MessageTopics(senderID, receiverID string) []string {
	return []string{MessagesTopic(senderID, receiverID), InboxTopic(receiverID)}
}
