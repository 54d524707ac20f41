package api

import (
	"fmt"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/gofiber/fiber/v2"
)

type notificationDoc struct {
	MongoId   string `json:"_id"`
	Id        string `json:"id"`
	UserId    string `json:"userId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Resource  string `json:"resource"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func normalizeNotification(doc notificationDoc) yozie.Notification {
	return yozie.Notification{
		Id:        yozie.NotificationId(firstNonEmpty(doc.MongoId, doc.Id)),
		UserId:    yozie.UserId(doc.UserId),
		Title:     doc.Title,
		Body:      doc.Body,
		Resource:  doc.Resource,
		Read:      doc.Read,
		CreatedAt: parseTime(doc.CreatedAt),
	}
}

func (c *Client) Notifications() ([]yozie.Notification, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/notifications"})
	if err != nil {
		return nil, fmt.Errorf("notifications request: %w", err)
	}
	var docs []notificationDoc
	if err := resp.Decode(&docs); err != nil {
		return nil, err
	}
	notifications := make([]yozie.Notification, 0, len(docs))
	for _, doc := range docs {
		notifications = append(notifications, normalizeNotification(doc))
	}
	return notifications, nil
}

func (c *Client) UnreadNotificationCount() (int, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/notifications/unread-count"})
	if err != nil {
		return 0, fmt.Errorf("unread count request: %w", err)
	}
	var doc struct {
		Count int `json:"count"`
	}
	if err := resp.Decode(&doc); err != nil {
		return 0, err
	}
	return doc.Count, nil
}

func (c *Client) MarkNotificationRead(id yozie.NotificationId) error {
	resp, err := c.Do(Request{Method: fiber.MethodPut, Path: "/notifications/" + string(id) + "/read"})
	if err != nil {
		return fmt.Errorf("mark read request: %w", err)
	}
	return resp.Err()
}
