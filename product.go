package yozie

import (
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("yozie: product not found")

type ProductId string

// Money is an amount in the smallest currency unit.
type Money int64

type Product struct {
	Id            ProductId
	VendorId      UserId
	CategoryId    CategoryId
	Name          string
	Description   string
	Price         Money
	DiscountPrice Money
	Quantity      int
	PhotoUrls     []string
	CreatedAt     time.Time
}

// EffectivePrice is the discount price when one is set, the regular price
// otherwise.
func (p Product) EffectivePrice() Money {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.Price {
		return p.DiscountPrice
	}
	return p.Price
}

type CategoryId string

type Category struct {
	Id      CategoryId
	Name    string
	IconUrl string
}
