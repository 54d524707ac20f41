package yozie

import "time"

type NotificationId string

type Notification struct {
	Id        NotificationId
	UserId    UserId
	Title     string
	Body      string
	Resource  string
	Read      bool
	CreatedAt time.Time
}

type ConnectionId string

// Connection links a buyer to a vendor they follow.
type Connection struct {
	Id        ConnectionId
	VendorId  UserId
	BuyerId   UserId
	CreatedAt time.Time
}

// PaymentSheet carries everything the hosted payment sheet needs. The client
// never sees raw card data; the secret is minted by the backend.
type PaymentSheet struct {
	ClientSecret   string
	CustomerId     string
	EphemeralKey   string
	PublishableKey string
}
