package realtime

import (
	"encoding/json"
	"sync"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/api"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/cache"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/chat"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/registry"
	"github.com/sirupsen/logrus"
)

// Bridge feeds pushed events into the query cache. Notifications invalidate
// the affected tags so subscribed screens refetch; a new message for the
// conversation the user is looking at is patched straight into the cached
// history, skipping the round trip.
type Bridge struct {
	Cache *cache.Store

	mu               sync.Mutex
	openConversation yozie.ConversationId
}

// Attach registers the bridge on the channel and returns the detach
// function. Detaching does not disconnect the channel.
func (b *Bridge) Attach(channel *Channel) func() {
	offNotification := channel.On(EventNotification, b.handleNotification)
	offMessage := channel.On(EventNewMessage, b.handleNewMessage)
	return func() {
		offNotification()
		offMessage()
	}
}

// SetOpenConversation marks the conversation currently on screen; its pushed
// messages are appended directly instead of refetched.
func (b *Bridge) SetOpenConversation(id yozie.ConversationId) {
	b.mu.Lock()
	b.openConversation = id
	b.mu.Unlock()
}

func (b *Bridge) ClearOpenConversation() {
	b.SetOpenConversation("")
}

func (b *Bridge) open() yozie.ConversationId {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openConversation
}

func (b *Bridge) handleNotification(data json.RawMessage) {
	var doc struct {
		Resource   string `json:"resource"`
		ResourceId string `json:"resourceId"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		logrus.WithError(err).Debugln("Unreadable notification payload.")
	}

	tags := registry.InvalidationTags(doc.Resource, doc.ResourceId)
	// The notification feed itself always changed.
	tags = append(tags, cache.ListTag(registry.ResourceNotifications))
	b.Cache.InvalidateTags(tags)
}

func (b *Bridge) handleNewMessage(data json.RawMessage) {
	message, err := api.DecodeMessage(data)
	if err != nil {
		logrus.WithError(err).Warningln("Unreadable message payload.")
		return
	}

	open := b.open()
	if open != "" && message.ConversationId == open {
		b.Cache.ApplyPatch(cache.Patch{
			Key: registry.MessagesKey(message.ConversationId),
			Apply: func(data interface{}) interface{} {
				return chat.AppendMessage(data, message)
			},
		})
	} else {
		b.Cache.InvalidateTags([]cache.Tag{
			registry.MessagesTag(message.ConversationId),
		})
	}
	// Conversation previews show the last message either way.
	b.Cache.InvalidateTags([]cache.Tag{cache.ListTag(registry.ResourceConversations)})
}
