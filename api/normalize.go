package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
)

// The backend names the same fields differently across endpoints (the user
// id alone arrives as "_id", "id" or "userId"). Each resource gets one
// normalizer applied at the network boundary so nothing past this file ever
// re-checks aliases.

type userDoc struct {
	MongoId   string   `json:"_id"`
	Id        string   `json:"id"`
	UserId    string   `json:"userId"`
	Name      string   `json:"name"`
	FullName  string   `json:"fullName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	AvatarUrl string   `json:"avatarUrl"`
	Avatar    string   `json:"avatar"`
	Role      string   `json:"role"`
	Roles     []string `json:"roles"`
	StoreName string   `json:"storeName"`
	LogoUrl   string   `json:"logoUrl"`
}

func normalizeUser(doc userDoc) yozie.User {
	rawIds := []string{doc.MongoId, doc.Id, doc.UserId}
	user := yozie.User{
		RawIds:    rawIds,
		Name:      firstNonEmpty(doc.Name, doc.FullName),
		Email:     doc.Email,
		Phone:     doc.Phone,
		AvatarUrl: firstNonEmpty(doc.AvatarUrl, doc.Avatar),
		StoreName: doc.StoreName,
		LogoUrl:   doc.LogoUrl,
	}
	aliases := user.Aliases()
	if len(aliases) > 0 {
		user.Id = yozie.UserId(aliases[0])
	}

	roleIds := doc.Roles
	if len(roleIds) == 0 && doc.Role != "" {
		roleIds = []string{doc.Role}
	}
	for _, id := range roleIds {
		if role, ok := yozie.AllRoles[yozie.RoleId(id)]; ok {
			user.Roles = append(user.Roles, role)
		}
	}
	return user
}

type messageDoc struct {
	MongoId        string `json:"_id"`
	Id             string `json:"id"`
	ConversationId string `json:"conversationId"`
	ChatId         string `json:"chatId"`
	SenderId       string `json:"senderId"`
	Sender         string `json:"sender"`
	RecipientId    string `json:"recipientId"`
	Receiver       string `json:"receiver"`
	Text           string `json:"text"`
	Content        string `json:"content"`
	CreatedAt      string `json:"createdAt"`
}

func normalizeMessage(doc messageDoc) yozie.Message {
	return yozie.Message{
		Id:             yozie.MessageId(firstNonEmpty(doc.MongoId, doc.Id)),
		ConversationId: yozie.ConversationId(firstNonEmpty(doc.ConversationId, doc.ChatId)),
		SenderId:       yozie.UserId(firstNonEmpty(doc.SenderId, doc.Sender)),
		RecipientId:    yozie.UserId(firstNonEmpty(doc.RecipientId, doc.Receiver)),
		Text:           firstNonEmpty(doc.Text, doc.Content),
		SentAt:         parseTime(doc.CreatedAt),
	}
}

// DecodeMessage normalizes a raw message payload, as pushed over the
// realtime channel or returned by the send endpoint.
func DecodeMessage(raw []byte) (yozie.Message, error) {
	var doc messageDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return yozie.Message{}, fmt.Errorf("message unmarshal: %w", err)
	}
	return normalizeMessage(doc), nil
}

// DecodeUser normalizes a raw user payload.
func DecodeUser(raw []byte) (yozie.User, error) {
	var doc userDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return yozie.User{}, fmt.Errorf("user unmarshal: %w", err)
	}
	return normalizeUser(doc), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
