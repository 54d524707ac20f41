package realtime

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/cache"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/registry"
	"github.com/stretchr/testify/assert"
)

func subscribeCounting(t *testing.T, store *cache.Store, name string, calls *int32, tags ...cache.Tag) {
	endpoint := cache.Endpoint{
		Name: name,
		Fetch: func(args string) (interface{}, error) {
			return int(atomic.AddInt32(calls, 1)), nil
		},
		Provides: func(args string) []cache.Tag {
			return tags
		},
	}
	sub, _, err := store.Subscribe(endpoint, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sub.Close)
}

func subscribeMessages(t *testing.T, store *cache.Store, conversationId yozie.ConversationId, calls *int32) {
	endpoint := cache.Endpoint{
		Name: registry.ResourceMessages,
		Fetch: func(args string) (interface{}, error) {
			atomic.AddInt32(calls, 1)
			return []yozie.Message{}, nil
		},
		Provides: func(args string) []cache.Tag {
			return []cache.Tag{registry.MessagesTag(yozie.ConversationId(args))}
		},
	}
	sub, _, err := store.Subscribe(endpoint, string(conversationId))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sub.Close)
}

func Test_NotificationInvalidatesResourceAndFeed(t *testing.T) {
	assert := assert.New(t)

	store := cache.New()
	var orderCalls, notificationCalls, productCalls int32
	subscribeCounting(t, store, registry.ResourceOrders, &orderCalls,
		cache.ListTag(registry.ResourceOrders))
	subscribeCounting(t, store, registry.ResourceNotifications, &notificationCalls,
		cache.ListTag(registry.ResourceNotifications))
	subscribeCounting(t, store, registry.ResourceProducts, &productCalls,
		cache.ListTag(registry.ResourceProducts))

	bridge := &Bridge{Cache: store}
	channel := New("ws://unused")
	defer channel.Close()
	detach := bridge.Attach(channel)
	defer detach()

	channel.dispatch(Envelope{
		Event: EventNotification,
		Data:  json.RawMessage(`{"resource":"orders","resourceId":"o1"}`),
	})

	assert.Eventually(func() bool {
		return atomic.LoadInt32(&orderCalls) == 2
	}, time.Second, 5*time.Millisecond, "named resource must refetch")
	assert.Eventually(func() bool {
		return atomic.LoadInt32(&notificationCalls) == 2
	}, time.Second, 5*time.Millisecond, "notification feed must refetch")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(int32(1), atomic.LoadInt32(&productCalls),
		"unrelated resources stay untouched")
}

func Test_UnknownResourceStillRefreshesFeed(t *testing.T) {
	assert := assert.New(t)

	store := cache.New()
	var notificationCalls int32
	subscribeCounting(t, store, registry.ResourceNotifications, &notificationCalls,
		cache.ListTag(registry.ResourceNotifications))

	bridge := &Bridge{Cache: store}
	channel := New("ws://unused")
	defer channel.Close()
	detach := bridge.Attach(channel)
	defer detach()

	channel.dispatch(Envelope{
		Event: EventNotification,
		Data:  json.RawMessage(`{"resource":"something-new"}`),
	})

	assert.Eventually(func() bool {
		return atomic.LoadInt32(&notificationCalls) == 2
	}, time.Second, 5*time.Millisecond)
}

func Test_NewMessagePatchesOpenConversation(t *testing.T) {
	assert := assert.New(t)

	store := cache.New()
	var messageCalls, conversationCalls int32
	subscribeMessages(t, store, "c1", &messageCalls)
	subscribeCounting(t, store, registry.ResourceConversations, &conversationCalls,
		cache.ListTag(registry.ResourceConversations))

	bridge := &Bridge{Cache: store}
	channel := New("ws://unused")
	defer channel.Close()
	detach := bridge.Attach(channel)
	defer detach()

	bridge.SetOpenConversation("c1")
	channel.dispatch(Envelope{
		Event: EventNewMessage,
		Data: json.RawMessage(`{
			"id":"m1","conversationId":"c1","senderId":"peer","text":"hello"
		}`),
	})

	data, ok := store.Peek(registry.MessagesKey("c1"))
	if assert.True(ok) {
		messages := data.([]yozie.Message)
		if assert.Len(messages, 1, "open conversation gets the message without a round trip") {
			assert.Equal(yozie.MessageId("m1"), messages[0].Id)
		}
	}
	assert.Equal(int32(1), atomic.LoadInt32(&messageCalls), "no refetch for a patched history")

	assert.Eventually(func() bool {
		return atomic.LoadInt32(&conversationCalls) == 2
	}, time.Second, 5*time.Millisecond, "conversation previews must refresh")
}

func Test_NewMessageInvalidatesClosedConversation(t *testing.T) {
	assert := assert.New(t)

	store := cache.New()
	var messageCalls int32
	subscribeMessages(t, store, "c1", &messageCalls)

	bridge := &Bridge{Cache: store}
	channel := New("ws://unused")
	defer channel.Close()
	detach := bridge.Attach(channel)
	defer detach()

	bridge.SetOpenConversation("c2")
	channel.dispatch(Envelope{
		Event: EventNewMessage,
		Data: json.RawMessage(`{
			"id":"m1","conversationId":"c1","senderId":"peer","text":"hello"
		}`),
	})

	assert.Eventually(func() bool {
		return atomic.LoadInt32(&messageCalls) == 2
	}, time.Second, 5*time.Millisecond, "background conversation must refetch")

	bridge.ClearOpenConversation()
	channel.dispatch(Envelope{
		Event: EventNewMessage,
		Data: json.RawMessage(`{
			"id":"m2","conversationId":"c1","senderId":"peer","text":"again"
		}`),
	})
	assert.Eventually(func() bool {
		return atomic.LoadInt32(&messageCalls) == 3
	}, time.Second, 5*time.Millisecond, "no open conversation means refetch")
}
