package chat

import (
	"strings"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/google/uuid"
)

const tempIdPrefix = "optimistic-"

// TempId mints the identifier an optimistic message carries until the
// server's echo replaces it.
func TempId() yozie.MessageId {
	return yozie.MessageId(tempIdPrefix + uuid.NewString())
}

func IsTempId(id yozie.MessageId) bool {
	return strings.HasPrefix(string(id), tempIdPrefix)
}

// AppendMessage merges one message into a cached message history. Duplicate
// deliveries (same id) leave the history unchanged; a server message that
// matches a pending optimistic one replaces it (reconciliation); everything
// else is appended. The input slice is never mutated.
func AppendMessage(data interface{}, incoming yozie.Message) interface{} {
	messages, ok := data.([]yozie.Message)
	if !ok && data != nil {
		return data
	}

	for _, existing := range messages {
		if existing.Id == incoming.Id {
			return messages
		}
	}
	if !incoming.Optimistic {
		for i, existing := range messages {
			if existing.Optimistic &&
				existing.SenderId == incoming.SenderId &&
				existing.Text == incoming.Text {
				reconciled := append([]yozie.Message(nil), messages...)
				reconciled[i] = incoming
				return reconciled
			}
		}
	}
	return append(append([]yozie.Message(nil), messages...), incoming)
}
