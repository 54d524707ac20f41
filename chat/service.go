package chat

import (
	"errors"
	"fmt"
	"time"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/cache"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/registry"
)

var ErrEmptyMessage = errors.New("chat: empty message")

// Sender is the network edge of a chat send; *api.Client satisfies it.
type Sender interface {
	SendMessage(conversationId yozie.ConversationId, text string) (yozie.Message, error)
}

// Service performs optimistic chat sends: the message shows up in the cached
// history before the network call resolves, is rolled back if the call
// fails, and is reconciled by the server's realtime echo if it succeeds.
type Service struct {
	Sender  Sender
	Cache   *cache.Store
	Session yozie.SessionStore
}

func (s *Service) Send(conversationId yozie.ConversationId, text string) (yozie.Message, error) {
	if text == "" {
		return yozie.Message{}, ErrEmptyMessage
	}
	session, err := s.Session.Current()
	if err != nil {
		return yozie.Message{}, fmt.Errorf("current session: %w", err)
	}

	optimistic := yozie.Message{
		Id:             TempId(),
		ConversationId: conversationId,
		SenderId:       session.UserId,
		Text:           text,
		SentAt:         time.Now().UTC(),
		Optimistic:     true,
	}

	var sent yozie.Message
	err = s.Cache.Mutate(cache.Mutation{
		Optimistic: &cache.Patch{
			Key: registry.MessagesKey(conversationId),
			Apply: func(data interface{}) interface{} {
				return AppendMessage(data, optimistic)
			},
		},
		Run: func() error {
			message, err := s.Sender.SendMessage(conversationId, text)
			if err != nil {
				return err
			}
			sent = message
			return nil
		},
	})
	if err != nil {
		return yozie.Message{}, fmt.Errorf("send message: %w", err)
	}
	return sent, nil
}
