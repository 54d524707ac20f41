package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/inmem"
	"github.com/stretchr/testify/assert"
)

func newRoleSessionStore(roleId yozie.RoleId) *inmem.SessionStore {
	store := inmem.NewSessionStore()
	store.Replace(yozie.Session{
		UserId:       "u1",
		AccessToken:  "token-1",
		RefreshToken: "refresh-1",
		Profile: yozie.User{
			Id:     "u1",
			RawIds: []string{"u1"},
			Roles:  yozie.Roles{yozie.AllRoles[roleId]},
		},
	})
	return store
}

func Test_CreateProductMultipart(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseMultipartForm(1 << 20)
		if !assert.NoError(err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal("Sneaker", r.FormValue("name"))
		assert.Equal("4999", r.FormValue("price"))
		assert.Equal("3999", r.FormValue("discountPrice"))
		assert.Equal("12", r.FormValue("quantity"))
		assert.Equal("cat-1", r.FormValue("categoryId"))

		photos := r.MultipartForm.File["photos"]
		if assert.Len(photos, 2) {
			assert.Equal("front.jpg", photos[0].Filename)
			assert.Equal("back.jpg", photos[1].Filename)
			file, err := photos[0].Open()
			if assert.NoError(err) {
				content, _ := io.ReadAll(file)
				file.Close()
				assert.Equal("front-bytes", string(content))
			}
		}

		w.Write([]byte(`{"_id":"p1","vendorId":"u1","name":"Sneaker","price":4999}`))
	}))
	defer server.Close()

	client := &Client{BaseUrl: server.URL, Session: newRoleSessionStore(yozie.RoleIdVendor)}

	draft := ProductDraft{
		Name: "Sneaker", CategoryId: "cat-1",
		Price: 4999, DiscountPrice: 3999, Quantity: 12,
	}
	product, err := client.CreateProduct(draft, []Upload{
		{Name: "front.jpg", Content: []byte("front-bytes")},
		{Name: "back.jpg", Content: []byte("back-bytes")},
	})
	if assert.NoError(err) {
		assert.Equal(yozie.ProductId("p1"), product.Id)
		assert.Equal(yozie.Money(4999), product.Price)
	}
}

func Test_CreateProductForbiddenForBuyer(t *testing.T) {
	assert := assert.New(t)

	// Unreachable host: the permission gate must reject before any request.
	client := &Client{BaseUrl: "http://127.0.0.1:0", Session: newRoleSessionStore(yozie.RoleIdBuyer)}

	_, err := client.CreateProduct(ProductDraft{Name: "Sneaker", Price: 1}, nil)
	assert.ErrorIs(err, yozie.ErrForbidden)

	err = client.DeleteProduct("p1")
	assert.ErrorIs(err, yozie.ErrForbidden)
}

func Test_CreateProductRequiresSession(t *testing.T) {
	assert := assert.New(t)

	client := &Client{BaseUrl: "http://127.0.0.1:0", Session: inmem.NewSessionStore()}
	_, err := client.CreateProduct(ProductDraft{Name: "Sneaker", Price: 1}, nil)
	assert.ErrorIs(err, yozie.ErrNoSession)
}

func Test_ProductDraftValidation(t *testing.T) {
	assert := assert.New(t)

	client := &Client{BaseUrl: "http://127.0.0.1:0", Session: newRoleSessionStore(yozie.RoleIdVendor)}

	cases := []struct {
		name  string
		draft ProductDraft
		field string
	}{
		{name: "missing name", draft: ProductDraft{Price: 1}, field: "name"},
		{name: "free product", draft: ProductDraft{Name: "x", Price: 0}, field: "price"},
		{name: "negative stock", draft: ProductDraft{Name: "x", Price: 1, Quantity: -1}, field: "quantity"},
	}

	for _, tc := range cases {
		_, err := client.CreateProduct(tc.draft, nil)
		validationErr, ok := err.(*ValidationError)
		if assert.True(ok, tc.name) {
			assert.Equal(tc.field, validationErr.Field, tc.name)
		}
	}
}

func Test_ProductByIdNotFound(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such product"}`))
	}))
	defer server.Close()

	client := &Client{BaseUrl: server.URL, Session: newRoleSessionStore(yozie.RoleIdBuyer)}

	_, err := client.ProductById("missing")
	assert.ErrorIs(err, yozie.ErrProductNotFound)
}

func Test_ProductsNormalized(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/products", r.URL.Path)
		w.Write([]byte(`[
			{"_id":"p1","vendorId":"v1","name":"A","price":100,"createdAt":"2024-01-02T03:04:05Z"},
			{"id":"p2","vendor":"v2","name":"B","price":200}
		]`))
	}))
	defer server.Close()

	client := &Client{BaseUrl: server.URL, Session: newRoleSessionStore(yozie.RoleIdBuyer)}

	products, err := client.Products()
	if !assert.NoError(err) {
		return
	}
	if assert.Len(products, 2) {
		assert.Equal(yozie.ProductId("p1"), products[0].Id)
		assert.Equal(yozie.UserId("v1"), products[0].VendorId)
		assert.False(products[0].CreatedAt.IsZero())
		assert.Equal(yozie.ProductId("p2"), products[1].Id)
		assert.Equal(yozie.UserId("v2"), products[1].VendorId)
	}
}
