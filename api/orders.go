package api

import (
	"fmt"
	"strconv"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/gofiber/fiber/v2"
)

type cartItemDoc struct {
	ProductId string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

func normalizeCartItems(docs []cartItemDoc) []yozie.CartItem {
	items := make([]yozie.CartItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, yozie.CartItem{
			ProductId: yozie.ProductId(doc.ProductId),
			Name:      doc.Name,
			UnitPrice: yozie.Money(doc.UnitPrice),
			Quantity:  doc.Quantity,
		})
	}
	return items
}

type orderDoc struct {
	MongoId   string        `json:"_id"`
	Id        string        `json:"id"`
	BuyerId   string        `json:"buyerId"`
	VendorId  string        `json:"vendorId"`
	Items     []cartItemDoc `json:"items"`
	Status    string        `json:"status"`
	Total     int64         `json:"total"`
	CreatedAt string        `json:"createdAt"`
}

func normalizeOrder(doc orderDoc) yozie.Order {
	return yozie.Order{
		Id:        yozie.OrderId(firstNonEmpty(doc.MongoId, doc.Id)),
		BuyerId:   yozie.UserId(doc.BuyerId),
		VendorId:  yozie.UserId(doc.VendorId),
		Items:     normalizeCartItems(doc.Items),
		Status:    yozie.OrderStatus(doc.Status),
		Total:     yozie.Money(doc.Total),
		CreatedAt: parseTime(doc.CreatedAt),
	}
}

func (c *Client) Orders() ([]yozie.Order, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/orders"})
	if err != nil {
		return nil, fmt.Errorf("orders request: %w", err)
	}
	var docs []orderDoc
	if err := resp.Decode(&docs); err != nil {
		return nil, err
	}
	orders := make([]yozie.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, normalizeOrder(doc))
	}
	return orders, nil
}

func (c *Client) OrderById(id yozie.OrderId) (yozie.Order, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/orders/" + string(id)})
	if err != nil {
		return yozie.Order{}, fmt.Errorf("order request: %w", err)
	}
	if resp.StatusCode == fiber.StatusNotFound {
		return yozie.Order{}, yozie.ErrOrderNotFound
	}
	var doc orderDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Order{}, err
	}
	return normalizeOrder(doc), nil
}

// PlaceOrder turns the current cart into an order.
func (c *Client) PlaceOrder() (yozie.Order, error) {
	resp, err := c.Do(Request{Method: fiber.MethodPost, Path: "/orders"})
	if err != nil {
		return yozie.Order{}, fmt.Errorf("place order request: %w", err)
	}
	var doc orderDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Order{}, err
	}
	return normalizeOrder(doc), nil
}

// UpdateOrderStatus is a vendor operation moving an order through its
// lifecycle.
func (c *Client) UpdateOrderStatus(id yozie.OrderId, status yozie.OrderStatus) (yozie.Order, error) {
	if err := c.requirePermission(yozie.PermissionManageOrders); err != nil {
		return yozie.Order{}, err
	}
	if !status.Valid() {
		return yozie.Order{}, yozie.ErrInvalidOrderStatus
	}

	resp, err := c.Do(Request{
		Method: fiber.MethodPut,
		Path:   "/vendor/orders/" + string(id) + "/status",
		Body:   map[string]string{"status": string(status)},
	})
	if err != nil {
		return yozie.Order{}, fmt.Errorf("update order status request: %w", err)
	}
	var doc orderDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Order{}, err
	}
	return normalizeOrder(doc), nil
}

type cartDoc struct {
	Items  []cartItemDoc `json:"items"`
	Coupon *struct {
		MongoId   string `json:"_id"`
		Id        string `json:"id"`
		VendorId  string `json:"vendorId"`
		Code      string `json:"code"`
		Percent   int    `json:"percent"`
		ExpiresAt string `json:"expiresAt"`
	} `json:"coupon"`
}

func normalizeCart(doc cartDoc) yozie.Cart {
	cart := yozie.Cart{Items: normalizeCartItems(doc.Items)}
	if doc.Coupon != nil {
		cart.Coupon = &yozie.Coupon{
			Id:        yozie.CouponId(firstNonEmpty(doc.Coupon.MongoId, doc.Coupon.Id)),
			VendorId:  yozie.UserId(doc.Coupon.VendorId),
			Code:      doc.Coupon.Code,
			Percent:   doc.Coupon.Percent,
			ExpiresAt: parseTime(doc.Coupon.ExpiresAt),
		}
	}
	return cart
}

func (c *Client) Cart() (yozie.Cart, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/cart"})
	if err != nil {
		return yozie.Cart{}, fmt.Errorf("cart request: %w", err)
	}
	var doc cartDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Cart{}, err
	}
	return normalizeCart(doc), nil
}

func (c *Client) AddToCart(productId yozie.ProductId, quantity int) (yozie.Cart, error) {
	if quantity <= 0 {
		return yozie.Cart{}, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	resp, err := c.Do(Request{
		Method: fiber.MethodPost,
		Path:   "/cart/items",
		Body: map[string]string{
			"productId": string(productId),
			"quantity":  strconv.Itoa(quantity),
		},
	})
	if err != nil {
		return yozie.Cart{}, fmt.Errorf("add to cart request: %w", err)
	}
	var doc cartDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Cart{}, err
	}
	return normalizeCart(doc), nil
}

func (c *Client) RemoveFromCart(productId yozie.ProductId) (yozie.Cart, error) {
	resp, err := c.Do(Request{Method: fiber.MethodDelete, Path: "/cart/items/" + string(productId)})
	if err != nil {
		return yozie.Cart{}, fmt.Errorf("remove from cart request: %w", err)
	}
	var doc cartDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Cart{}, err
	}
	return normalizeCart(doc), nil
}

func (c *Client) ApplyCoupon(code string) (yozie.Cart, error) {
	if err := requireField("code", code); err != nil {
		return yozie.Cart{}, err
	}
	resp, err := c.Do(Request{
		Method: fiber.MethodPost,
		Path:   "/cart/coupon",
		Body:   map[string]string{"code": code},
	})
	if err != nil {
		return yozie.Cart{}, fmt.Errorf("apply coupon request: %w", err)
	}
	var doc cartDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Cart{}, err
	}
	return normalizeCart(doc), nil
}
