package api

import (
	"fmt"
	"strconv"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/gofiber/fiber/v2"
)

type productDoc struct {
	MongoId       string   `json:"_id"`
	Id            string   `json:"id"`
	VendorId      string   `json:"vendorId"`
	Vendor        string   `json:"vendor"`
	CategoryId    string   `json:"categoryId"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         int64    `json:"price"`
	DiscountPrice int64    `json:"discountPrice"`
	Quantity      int      `json:"quantity"`
	PhotoUrls     []string `json:"photoUrls"`
	CreatedAt     string   `json:"createdAt"`
}

func normalizeProduct(doc productDoc) yozie.Product {
	return yozie.Product{
		Id:            yozie.ProductId(firstNonEmpty(doc.MongoId, doc.Id)),
		VendorId:      yozie.UserId(firstNonEmpty(doc.VendorId, doc.Vendor)),
		CategoryId:    yozie.CategoryId(doc.CategoryId),
		Name:          doc.Name,
		Description:   doc.Description,
		Price:         yozie.Money(doc.Price),
		DiscountPrice: yozie.Money(doc.DiscountPrice),
		Quantity:      doc.Quantity,
		PhotoUrls:     doc.PhotoUrls,
		CreatedAt:     parseTime(doc.CreatedAt),
	}
}

func normalizeProducts(docs []productDoc) []yozie.Product {
	products := make([]yozie.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, normalizeProduct(doc))
	}
	return products
}

func (c *Client) Products() ([]yozie.Product, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/products"})
	if err != nil {
		return nil, fmt.Errorf("products request: %w", err)
	}
	var docs []productDoc
	if err := resp.Decode(&docs); err != nil {
		return nil, err
	}
	return normalizeProducts(docs), nil
}

func (c *Client) ProductById(id yozie.ProductId) (yozie.Product, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/products/" + string(id)})
	if err != nil {
		return yozie.Product{}, fmt.Errorf("product request: %w", err)
	}
	if resp.StatusCode == fiber.StatusNotFound {
		return yozie.Product{}, yozie.ErrProductNotFound
	}
	var doc productDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Product{}, err
	}
	return normalizeProduct(doc), nil
}

// VendorProducts lists the authenticated vendor's own catalog.
func (c *Client) VendorProducts() ([]yozie.Product, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/vendor/products"})
	if err != nil {
		return nil, fmt.Errorf("vendor products request: %w", err)
	}
	var docs []productDoc
	if err := resp.Decode(&docs); err != nil {
		return nil, err
	}
	return normalizeProducts(docs), nil
}

type ProductDraft struct {
	Name          string
	Description   string
	CategoryId    yozie.CategoryId
	Price         yozie.Money
	DiscountPrice yozie.Money
	Quantity      int
}

func (d ProductDraft) validate() error {
	if err := requireField("name", d.Name); err != nil {
		return err
	}
	if d.Price <= 0 {
		return &ValidationError{Field: "price", Reason: "must be positive"}
	}
	if d.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	return nil
}

func (d ProductDraft) form() map[string]string {
	return map[string]string{
		"name":          d.Name,
		"description":   d.Description,
		"categoryId":    string(d.CategoryId),
		"price":         strconv.FormatInt(int64(d.Price), 10),
		"discountPrice": strconv.FormatInt(int64(d.DiscountPrice), 10),
		"quantity":      strconv.Itoa(d.Quantity),
	}
}

func (c *Client) CreateProduct(draft ProductDraft, photos []Upload) (yozie.Product, error) {
	if err := c.requirePermission(yozie.PermissionManageProducts); err != nil {
		return yozie.Product{}, err
	}
	if err := draft.validate(); err != nil {
		return yozie.Product{}, err
	}

	files := make([]Upload, 0, len(photos))
	for _, photo := range photos {
		photo.Field = "photos"
		files = append(files, photo)
	}
	resp, err := c.Do(Request{
		Method: fiber.MethodPost,
		Path:   "/vendor/products",
		Form:   draft.form(),
		Files:  files,
	})
	if err != nil {
		return yozie.Product{}, fmt.Errorf("create product request: %w", err)
	}
	var doc productDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Product{}, err
	}
	return normalizeProduct(doc), nil
}

func (c *Client) UpdateProduct(id yozie.ProductId, draft ProductDraft) (yozie.Product, error) {
	if err := c.requirePermission(yozie.PermissionManageProducts); err != nil {
		return yozie.Product{}, err
	}
	if err := draft.validate(); err != nil {
		return yozie.Product{}, err
	}

	resp, err := c.Do(Request{
		Method: fiber.MethodPut,
		Path:   "/vendor/products/" + string(id),
		Form:   draft.form(),
	})
	if err != nil {
		return yozie.Product{}, fmt.Errorf("update product request: %w", err)
	}
	var doc productDoc
	if err := resp.Decode(&doc); err != nil {
		return yozie.Product{}, err
	}
	return normalizeProduct(doc), nil
}

func (c *Client) DeleteProduct(id yozie.ProductId) error {
	if err := c.requirePermission(yozie.PermissionManageProducts); err != nil {
		return err
	}
	resp, err := c.Do(Request{Method: fiber.MethodDelete, Path: "/vendor/products/" + string(id)})
	if err != nil {
		return fmt.Errorf("delete product request: %w", err)
	}
	return resp.Err()
}

func (c *Client) Categories() ([]yozie.Category, error) {
	resp, err := c.Do(Request{Method: fiber.MethodGet, Path: "/categories"})
	if err != nil {
		return nil, fmt.Errorf("categories request: %w", err)
	}
	var docs []struct {
		MongoId string `json:"_id"`
		Id      string `json:"id"`
		Name    string `json:"name"`
		IconUrl string `json:"iconUrl"`
	}
	if err := resp.Decode(&docs); err != nil {
		return nil, err
	}
	categories := make([]yozie.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, yozie.Category{
			Id:      yozie.CategoryId(firstNonEmpty(doc.MongoId, doc.Id)),
			Name:    doc.Name,
			IconUrl: doc.IconUrl,
		})
	}
	return categories, nil
}
