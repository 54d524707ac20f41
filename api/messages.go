package api

import (
	"fmt"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/gofiber/fiber/v2"
)

type conversationDoc struct {
	MongoId     string     `json:"_id"`
	Id          string     `json:"id"`
	Peer        userDoc    `json:"peer"`
	LastMessage messageDoc `json:"lastMessage"`
	UnreadCount int        `json:"unreadCount"`
}

func normalizeConversation(doc conversationDoc) yozie.Conversation {
	peer := normalizeUser(doc.Peer)
	return yozie.Conversation{
		Id:          yozie.ConversationId(firstNonEmpty(doc.MongoId, doc.Id)),
		PeerId:      peer.Id,
		PeerName:    peer.Name,
		PeerAvatar:  peer.AvatarUrl,
		LastMessage: normalizeMessage(doc.LastMessage),
		UnreadCount: doc.UnreadCount,
	}
}

func (c *Client) Conversations() ([]yozie.Conversation, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/conversations"})
	if err != nil {
		return nil, fmt.Errorf("conversations request: %w", err)
	}
	var docs []conversationDoc
	if err := resp.Decode(&docs); err != nil {
		return nil, err
	}
	conversations := make([]yozie.Conversation, 0, len(docs))
	for _, doc := range docs {
		conversations = append(conversations, normalizeConversation(doc))
	}
	return conversations, nil
}

func (c *Client) Messages(conversationId yozie.ConversationId) ([]yozie.Message, error) {
	resp, err := c.Do(Request{
		Method: fiber.MethodGet,
		Path:   "/conversations/" + string(conversationId) + "/messages",
	})
	if err != nil {
		return nil, fmt.Errorf("messages request: %w", err)
	}
	var docs []messageDoc
	if err := resp.Decode(&docs); err != nil {
		return nil, err
	}
	messages := make([]yozie.Message, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, normalizeMessage(doc))
	}
	return messages, nil
}

func (c *Client) SendMessage(conversationId yozie.ConversationId, text string) (yozie.Message, error) {
	if err := requireField("text", text); err != nil {
		return yozie.Message{}, err
	}
	resp, err := c.Do(Request{
		Method: fiber.MethodPost,
		Path:   "/conversations/" + string(conversationId) + "/messages",
		Body:   map[string]string{"text": text},
	})
	if err != nil {
		return yozie.Message{}, fmt.Errorf("send message request: %w", err)
	}
	var doc messageDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Message{}, err
	}
	return normalizeMessage(doc), nil
}

type connectionDoc struct {
	MongoId   string `json:"_id"`
	Id        string `json:"id"`
	VendorId  string `json:"vendorId"`
	BuyerId   string `json:"buyerId"`
	CreatedAt string `json:"createdAt"`
}

func normalizeConnection(doc connectionDoc) yozie.Connection {
	return yozie.Connection{
		Id:        yozie.ConnectionId(firstNonEmpty(doc.MongoId, doc.Id)),
		VendorId:  yozie.UserId(doc.VendorId),
		BuyerId:   yozie.UserId(doc.BuyerId),
		CreatedAt: parseTime(doc.CreatedAt),
	}
}

func (c *Client) Connections() ([]yozie.Connection, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/connections"})
	if err != nil {
		return nil, fmt.Errorf("connections request: %w", err)
	}
	var docs []connectionDoc
	if err := resp.Decode(&docs); err != nil {
		return nil, err
	}
	connections := make([]yozie.Connection, 0, len(docs))
	for _, doc := range docs {
		connections = append(connections, normalizeConnection(doc))
	}
	return connections, nil
}

func (c *Client) Connect(vendorId yozie.UserId) (yozie.Connection, error) {
	resp, err := c.Do(Request{
		Method: fiber.MethodPost,
		Path:   "/connections",
		Body:   map[string]string{"vendorId": string(vendorId)},
	})
	if err != nil {
		return yozie.Connection{}, fmt.Errorf("connect request: %w", err)
	}
	var doc connectionDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Connection{}, err
	}
	return normalizeConnection(doc), nil
}

func (c *Client) Disconnect(id yozie.ConnectionId) error {
	resp, err := c.Do(Request{Method: fiber.MethodDelete, Path: "/connections/" + string(id)})
	if err != nil {
		return fmt.Errorf("disconnect request: %w", err)
	}
	return resp.Err()
}

// PaymentSheet asks the backend to mint payment-sheet credentials for an
// order. The hosted sheet consumes them; no card data passes through here.
func (c *Client) PaymentSheet(orderId yozie.OrderId) (yozie.PaymentSheet, error) {
	resp, err := c.Do(Request{
		Method: fiber.MethodPost,
		Path:   "/payments/sheet",
		Body:   map[string]string{"orderId": string(orderId)},
	})
	if err != nil {
		return yozie.PaymentSheet{}, fmt.Errorf("payment sheet request: %w", err)
	}
	var doc struct {
		ClientSecret   string `json:"clientSecret"`
		CustomerId     string `json:"customerId"`
		EphemeralKey   string `json:"ephemeralKey"`
		PublishableKey string `json:"publishableKey"`
	}
	if err := resp.Decode(&doc); err != nil {
		return yozie.PaymentSheet{}, err
	}
	return yozie.PaymentSheet{
		ClientSecret:   doc.ClientSecret,
		CustomerId:     doc.CustomerId,
		EphemeralKey:   doc.EphemeralKey,
		PublishableKey: doc.PublishableKey,
	}, nil
}
