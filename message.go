package yozie

import "time"

type MessageId string

type ConversationId string

// Message is a single chat message. Optimistic messages are synthesized
// locally on send with a temporary id and reconciled against the server's
// realtime echo.
type Message struct {
	Id             MessageId
	ConversationId ConversationId
	SenderId       UserId
	RecipientId    UserId
	Text           string
	SentAt         time.Time
	Optimistic     bool
}

type Conversation struct {
	Id          ConversationId
	PeerId      UserId
	PeerName    string
	PeerAvatar  string
	LastMessage Message
	UnreadCount int
}
