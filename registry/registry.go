// Package registry is the declarative endpoint table: one cache endpoint per
// REST resource, each bound to the reauthorizing api client and tagged for
// invalidation.
package registry

import (
	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/api"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/cache"
)

// Resource type names double as cache tag types and as the "resource" field
// of pushed notification events.
const (
	ResourceProducts      = "products"
	ResourceCategories    = "categories"
	ResourceCart          = "cart"
	ResourceOrders        = "orders"
	ResourceCoupons       = "coupons"
	ResourceNotifications = "notifications"
	ResourceConversations = "conversations"
	ResourceMessages      = "messages"
	ResourceConnections   = "connections"
)

type Registry struct {
	Products      cache.Endpoint
	ProductById   cache.Endpoint // args: product id
	VendorCatalog cache.Endpoint
	Categories    cache.Endpoint
	Cart          cache.Endpoint
	Orders        cache.Endpoint
	Coupons       cache.Endpoint
	Notifications cache.Endpoint
	UnreadCount   cache.Endpoint
	Conversations cache.Endpoint
	Messages      cache.Endpoint // args: conversation id
	Connections   cache.Endpoint
}

func New(client *api.Client) Registry {
	return Registry{
		Products: cache.Endpoint{
			Name:     ResourceProducts,
			Fetch:    func(string) (interface{}, error) { return client.Products() },
			Provides: listTags(ResourceProducts),
		},
		ProductById: cache.Endpoint{
			Name: "product",
			Fetch: func(args string) (interface{}, error) {
				return client.ProductById(yozie.ProductId(args))
			},
			Provides: func(args string) []cache.Tag {
				return []cache.Tag{cache.ItemTag(ResourceProducts, args)}
			},
		},
		VendorCatalog: cache.Endpoint{
			Name:     "vendor-catalog",
			Fetch:    func(string) (interface{}, error) { return client.VendorProducts() },
			Provides: listTags(ResourceProducts),
		},
		Categories: cache.Endpoint{
			Name:     ResourceCategories,
			Fetch:    func(string) (interface{}, error) { return client.Categories() },
			Provides: listTags(ResourceCategories),
		},
		Cart: cache.Endpoint{
			Name:     ResourceCart,
			Fetch:    func(string) (interface{}, error) { return client.Cart() },
			Provides: listTags(ResourceCart),
		},
		Orders: cache.Endpoint{
			Name:     ResourceOrders,
			Fetch:    func(string) (interface{}, error) { return client.Orders() },
			Provides: listTags(ResourceOrders),
		},
		Coupons: cache.Endpoint{
			Name:     ResourceCoupons,
			Fetch:    func(string) (interface{}, error) { return client.Coupons() },
			Provides: listTags(ResourceCoupons),
		},
		Notifications: cache.Endpoint{
			Name:     ResourceNotifications,
			Fetch:    func(string) (interface{}, error) { return client.Notifications() },
			Provides: listTags(ResourceNotifications),
		},
		// The unread badge shares the notifications tag so a pushed
		// notification refreshes both the feed and the count.
		UnreadCount: cache.Endpoint{
			Name:     "unread-count",
			Fetch:    func(string) (interface{}, error) { return client.UnreadNotificationCount() },
			Provides: listTags(ResourceNotifications),
		},
		Conversations: cache.Endpoint{
			Name:     ResourceConversations,
			Fetch:    func(string) (interface{}, error) { return client.Conversations() },
			Provides: listTags(ResourceConversations),
		},
		Messages: cache.Endpoint{
			Name: ResourceMessages,
			Fetch: func(args string) (interface{}, error) {
				return client.Messages(yozie.ConversationId(args))
			},
			Provides: func(args string) []cache.Tag {
				return []cache.Tag{
					cache.ListTag(ResourceMessages),
					MessagesTag(yozie.ConversationId(args)),
				}
			},
		},
		Connections: cache.Endpoint{
			Name:     ResourceConnections,
			Fetch:    func(string) (interface{}, error) { return client.Connections() },
			Provides: listTags(ResourceConnections),
		},
	}
}

func listTags(resourceType string) func(string) []cache.Tag {
	return func(string) []cache.Tag {
		return []cache.Tag{cache.ListTag(resourceType)}
	}
}

// MessagesKey is the cache key of one conversation's message history.
func MessagesKey(conversationId yozie.ConversationId) cache.Key {
	return cache.Key{Endpoint: ResourceMessages, Args: string(conversationId)}
}

// MessagesTag groups one conversation's message entries for invalidation.
func MessagesTag(conversationId yozie.ConversationId) cache.Tag {
	return cache.ItemTag(ResourceMessages, string(conversationId))
}

// InvalidationTags maps a pushed event's resource name to the tags it
// touches. Unknown resources invalidate nothing beyond the notification
// feed itself, which the caller always refreshes.
func InvalidationTags(resource string, id string) []cache.Tag {
	switch resource {
	case ResourceProducts, ResourceOrders, ResourceCart, ResourceCoupons,
		ResourceConnections, ResourceConversations, ResourceCategories:
		tags := []cache.Tag{cache.ListTag(resource)}
		if id != "" {
			tags = append(tags, cache.ItemTag(resource, id))
		}
		return tags
	case ResourceMessages:
		if id != "" {
			return []cache.Tag{MessagesTag(yozie.ConversationId(id))}
		}
		return []cache.Tag{cache.ListTag(ResourceMessages)}
	default:
		return nil
	}
}
