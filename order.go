package yozie

import (
	"errors"
	"time"
)

var ErrOrderNotFound = errors.New("yozie: order not found")

var ErrInvalidOrderStatus = errors.New("yozie: invalid order status")

type OrderId string

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var AllOrderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range AllOrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Order struct {
	Id        OrderId
	BuyerId   UserId
	VendorId  UserId
	Items     []CartItem
	Status    OrderStatus
	Total     Money
	CreatedAt time.Time
}

type CartItem struct {
	ProductId ProductId
	Name      string
	UnitPrice Money
	Quantity  int
}

func (i CartItem) Subtotal() Money {
	return i.UnitPrice * Money(i.Quantity)
}

type Cart struct {
	Items  []CartItem
	Coupon *Coupon
}

// Total applies the attached coupon's percentage discount, when present, to
// the item subtotals.
func (c Cart) Total() Money {
	var total Money
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	if c.Coupon != nil && c.Coupon.Percent > 0 {
		total -= total * Money(c.Coupon.Percent) / 100
	}
	return total
}
