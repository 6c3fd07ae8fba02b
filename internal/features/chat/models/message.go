package models

import "time"

// MessageType distinguishes member chatter from automated announcements.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
)

// Message is a single entry in a group's chat feed.
type Message struct {
	ID         string      `json:"id"`
	GroupID    string      `json:"group_id"`
	SenderID   string      `json:"sender_id,omitempty"` // empty for system messages
	SenderName string      `json:"sender_name,omitempty"`
	Text       string      `json:"text"`
	Type       MessageType `json:"type"`
	Timestamp  time.Time   `json:"timestamp"`
}

// MessageCreate is the payload for posting a chat message.
type MessageCreate struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}
