package api

import (
	"fmt"
	"time"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/gofiber/fiber/v2"
)

type couponDoc struct {
	MongoId   string `json:"_id"`
	Id        string `json:"id"`
	VendorId  string `json:"vendorId"`
	Code      string `json:"code"`
	Percent   int    `json:"percent"`
	ExpiresAt string `json:"expiresAt"`
}

func normalizeCoupon(doc couponDoc) yozie.Coupon {
	return yozie.Coupon{
		Id:        yozie.CouponId(firstNonEmpty(doc.MongoId, doc.Id)),
		VendorId:  yozie.UserId(doc.VendorId),
		Code:      doc.Code,
		Percent:   doc.Percent,
		ExpiresAt: parseTime(doc.ExpiresAt),
	}
}

// Coupons lists the authenticated vendor's coupons.
func (c *Client) Coupons() ([]yozie.Coupon, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/vendor/coupons"})
	if err != nil {
		return nil, fmt.Errorf("coupons request: %w", err)
	}
	var docs []couponDoc
	if err := resp.Decode(&docs); err != nil {
		return nil, err
	}
	coupons := make([]yozie.Coupon, 0, len(docs))
	for _, doc := range docs {
		coupons = append(coupons, normalizeCoupon(doc))
	}
	return coupons, nil
}

type CouponDraft struct {
	Code      string
	Percent   int
	ExpiresAt time.Time
}

func (c *Client) CreateCoupon(draft CouponDraft) (yozie.Coupon, error) {
	if err := c.requirePermission(yozie.PermissionManageCoupons); err != nil {
		return yozie.Coupon{}, err
	}
	if err := requireField("code", draft.Code); err != nil {
		return yozie.Coupon{}, err
	}
	if draft.Percent <= 0 || draft.Percent > 100 {
		return yozie.Coupon{}, &ValidationError{Field: "percent", Reason: "must be between 1 and 100"}
	}

	body := map[string]interface{}{
		"code":    draft.Code,
		"percent": draft.Percent,
	}
	if !draft.ExpiresAt.IsZero() {
		body["expiresAt"] = draft.ExpiresAt.UTC().Format(time.RFC3339)
	}
	resp, err := c.Do(Request{Method: fiber.MethodPost, Path: "/vendor/coupons", Body: body})
	if err != nil {
		return yozie.Coupon{}, fmt.Errorf("create coupon request: %w", err)
	}
	var doc couponDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Coupon{}, err
	}
	return normalizeCoupon(doc), nil
}

func (c *Client) DeleteCoupon(id yozie.CouponId) error {
	if err := c.requirePermission(yozie.PermissionManageCoupons); err != nil {
		return err
	}
	resp, err := c.Do(Request{Method: fiber.MethodDelete, Path: "/vendor/coupons/" + string(id)})
	if err != nil {
		return fmt.Errorf("delete coupon request: %w", err)
	}
	return resp.Err()
}
