package yozie

import (
	"errors"
	"time"
)

var ErrCouponNotFound = errors.New("yozie: coupon not found")

type CouponId string

type Coupon struct {
	Id        CouponId
	VendorId  UserId
	Code      string
	Percent   int
	ExpiresAt time.Time
}

func (c Coupon) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
