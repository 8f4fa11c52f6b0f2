package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	categoryuc "github.com/Glenferdinza/sporton/internal/usecase/category"
	productuc "github.com/Glenferdinza/sporton/internal/usecase/product"
)

// catalog backs both the category and the product fake so deletes can see
// references.
type catalog struct {
	mu         sync.Mutex
	categories map[string]categoryuc.Category
	products   map[string]productuc.Product
}

func newCatalog() *catalog {
	return &catalog{categories: map[string]categoryuc.Category{}, products: map[string]productuc.Product{}}
}

type categoryFake struct{ *catalog }

func (s categoryFake) Create(_ context.Context, name, description, imageURL string) (*categoryuc.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := categoryuc.Category{ID: uuid.NewString(), Name: name, Description: description, ImageURL: imageURL, CreatedAt: time.Now()}
	s.categories[c.ID] = c
	return &c, nil
}

func (s categoryFake) List(context.Context) ([]categoryuc.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]categoryuc.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (s categoryFake) GetByID(_ context.Context, id string) (*categoryuc.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, categoryuc.ErrNotFound
	}
	return &c, nil
}

func (s categoryFake) Update(_ context.Context, id string, f categoryuc.Fields) (*categoryuc.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, categoryuc.ErrNotFound
	}
	if f.Name != nil {
		c.Name = *f.Name
	}
	if f.Description != nil {
		c.Description = *f.Description
	}
	if f.ImageURL != nil {
		c.ImageURL = *f.ImageURL
	}
	s.categories[id] = c
	return &c, nil
}

func (s categoryFake) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return categoryuc.ErrNotFound
	}
	for _, p := range s.products {
		if p.Category.ID == id {
			return categoryuc.ErrInUse
		}
	}
	delete(s.categories, id)
	return nil
}

type productFake struct{ *catalog }

func (s productFake) CategoryExists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.categories[id]
	return ok, nil
}

func (s productFake) Create(_ context.Context, in productuc.NewProduct) (*productuc.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := productuc.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    productuc.CategoryRef{ID: in.CategoryID, Name: s.categories[in.CategoryID].Name},
		ImageURL:    in.ImageURL,
		CreatedAt:   time.Now(),
	}
	s.products[p.ID] = p
	return &p, nil
}

func (s productFake) List(_ context.Context, q productuc.ListQuery) ([]productuc.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []productuc.Product{}
	for _, p := range s.products {
		if q.CategoryID != nil && p.Category.ID != *q.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s productFake) GetByID(_ context.Context, id string) (*productuc.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, productuc.ErrNotFound
	}
	return &p, nil
}

func (s productFake) Update(_ context.Context, id string, f productuc.Fields) (*productuc.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, productuc.ErrNotFound
	}
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Price != nil {
		p.Price = *f.Price
	}
	if f.Stock != nil {
		p.Stock = *f.Stock
	}
	if f.CategoryID != nil {
		p.Category = productuc.CategoryRef{ID: *f.CategoryID, Name: s.categories[*f.CategoryID].Name}
	}
	if f.ImageURL != nil {
		p.ImageURL = *f.ImageURL
	}
	s.products[id] = p
	return &p, nil
}

func (s productFake) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return productuc.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func multipartBody(t *testing.T, fields map[string]string, fileField string) (string, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, "image.png")
		require.NoError(t, err)
		_, err = fw.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), buf
}

func TestCategoriesAndProducts_Multipart(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	// category with image
	ct, body := multipartBody(t, map[string]string{"name": "Running", "description": "Shoes"}, "image")
	status, raw := env.do(t, fiber.MethodPost, "/api/categories", token, ct, body)
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var cat categoryuc.Category
	require.NoError(t, json.Unmarshal(raw, &cat))
	require.True(t, strings.HasPrefix(cat.ImageURL, "/uploads/categories/"), cat.ImageURL)

	status, _ = env.do(t, fiber.MethodGet, cat.ImageURL, "", "", nil)
	require.Equal(t, fiber.StatusOK, status)

	// product in that category
	ct, body = multipartBody(t, map[string]string{
		"name": "Road Runner", "price": "450000", "stock": "4", "category": cat.ID, "description": "Daily trainer",
	}, "image")
	status, raw = env.do(t, fiber.MethodPost, "/api/products", token, ct, body)
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var p productuc.Product
	require.NoError(t, json.Unmarshal(raw, &p))
	require.Equal(t, "Running", p.Category.Name)
	require.Equal(t, "450000", p.Price.String())

	status, raw = env.do(t, fiber.MethodGet, "/api/products?category="+cat.ID, "", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list []productuc.Product
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)

	// partial update keeps the other fields
	ct, body = multipartBody(t, map[string]string{"stock": "9"}, "")
	status, raw = env.do(t, fiber.MethodPut, "/api/products/"+p.ID, token, ct, body)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	require.NoError(t, json.Unmarshal(raw, &p))
	require.Equal(t, 9, p.Stock)
	require.Equal(t, "Road Runner", p.Name)

	status, raw = env.do(t, fiber.MethodDelete, "/api/categories/"+cat.ID, token, "", nil)
	require.Equal(t, fiber.StatusConflict, status, string(raw))

	status, raw = env.do(t, fiber.MethodDelete, "/api/products/"+p.ID, token, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.JSONEq(t, `{"message":"product deleted"}`, string(raw))

	status, _ = env.do(t, fiber.MethodDelete, "/api/categories/"+cat.ID, token, "", nil)
	require.Equal(t, fiber.StatusOK, status)
}

func TestProducts_Rejections(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	status, _ := env.do(t, fiber.MethodPost, "/api/products", token, fiber.MIMEApplicationJSON,
		strings.NewReader(`{"name":"x"}`))
	require.Equal(t, fiber.StatusUnsupportedMediaType, status)

	ct, body := multipartBody(t, map[string]string{"name": "Racket", "price": "-5", "stock": "1", "category": uuid.NewString()}, "")
	status, _ = env.do(t, fiber.MethodPost, "/api/products", token, ct, body)
	require.Equal(t, fiber.StatusBadRequest, status)

	ct, body = multipartBody(t, map[string]string{"name": "Racket", "price": "100", "stock": "many", "category": uuid.NewString()}, "")
	status, raw := env.do(t, fiber.MethodPost, "/api/products", token, ct, body)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.JSONEq(t, `{"error":"stock must be a whole number"}`, string(raw))

	ct, body = multipartBody(t, map[string]string{"name": "Racket", "price": "100", "stock": "1", "category": uuid.NewString()}, "")
	status, _ = env.do(t, fiber.MethodPost, "/api/products", token, ct, body)
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.do(t, fiber.MethodGet, "/api/products/not-a-uuid", "", "", nil)
	require.Equal(t, fiber.StatusNotFound, status)

	status, raw = env.do(t, fiber.MethodGet, "/api/products?category=not-a-uuid", "", "", nil)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.JSONEq(t, `{"error":"category filter must be a valid id"}`, string(raw))
}
