package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	authuc "github.com/Glenferdinza/sporton/internal/usecase/auth"
	bankuc "github.com/Glenferdinza/sporton/internal/usecase/bank"
	categoryuc "github.com/Glenferdinza/sporton/internal/usecase/category"
	productuc "github.com/Glenferdinza/sporton/internal/usecase/product"
	trxuc "github.com/Glenferdinza/sporton/internal/usecase/transaction"
)

// Login exchanges admin credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*authuc.LoginResult, error) {
	var out authuc.LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/admin/login", body, &out); err != nil {
		return nil, err
	}
	c.Token = out.AccessToken
	return &out, nil
}

type deleted struct {
	Message string `json:"message"`
}

func (c *Client) remove(ctx context.Context, path string) error {
	return c.mutate(func() error {
		return c.do(ctx, http.MethodDelete, path, nil, &deleted{})
	})
}

// Banks

func (c *Client) ListBanks(ctx context.Context) ([]bankuc.Bank, error) {
	var out []bankuc.Bank
	if err := c.do(ctx, http.MethodGet, "/banks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBank(ctx context.Context, id string) (*bankuc.Bank, error) {
	var out bankuc.Bank
	if err := c.do(ctx, http.MethodGet, "/banks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBank(ctx context.Context, in bankuc.CreateInput) (*bankuc.Bank, error) {
	var out bankuc.Bank
	err := c.mutate(func() error {
		return c.do(ctx, http.MethodPost, "/banks", in, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBank(ctx context.Context, id string, in bankuc.UpdateInput) (*bankuc.Bank, error) {
	var out bankuc.Bank
	err := c.mutate(func() error {
		return c.do(ctx, http.MethodPut, "/banks/"+url.PathEscape(id), in, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBank(ctx context.Context, id string) error {
	return c.remove(ctx, "/banks/"+url.PathEscape(id))
}

// Categories

// CategoryInput is sent as multipart. Image is optional on update.
type CategoryInput struct {
	Name        string
	Description string
	Image       *File
}

func (in CategoryInput) form() *form {
	return newForm().
		set("name", in.Name).
		set("description", in.Description).
		file("image", in.Image)
}

func (c *Client) ListCategories(ctx context.Context) ([]categoryuc.Category, error) {
	var out []categoryuc.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (*categoryuc.Category, error) {
	var out categoryuc.Category
	if err := c.do(ctx, http.MethodGet, "/categories/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*categoryuc.Category, error) {
	var out categoryuc.Category
	err := c.mutate(func() error {
		return c.do(ctx, http.MethodPost, "/categories", in.form(), &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*categoryuc.Category, error) {
	var out categoryuc.Category
	err := c.mutate(func() error {
		return c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), in.form(), &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.remove(ctx, "/categories/"+url.PathEscape(id))
}

// Products

// ProductInput is sent as multipart. Price is a decimal string.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Stock       int
	CategoryID  string
	Image       *File
}

func (in ProductInput) form() *form {
	return newForm().
		set("name", in.Name).
		set("description", in.Description).
		set("price", in.Price).
		set("stock", strconv.Itoa(in.Stock)).
		set("category", in.CategoryID).
		file("image", in.Image)
}

// ListProducts returns all products, or only those in categoryID when it is
// not empty.
func (c *Client) ListProducts(ctx context.Context, categoryID string) ([]productuc.Product, error) {
	path := "/products"
	if categoryID != "" {
		path += "?category=" + url.QueryEscape(categoryID)
	}
	var out []productuc.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*productuc.Product, error) {
	var out productuc.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*productuc.Product, error) {
	var out productuc.Product
	err := c.mutate(func() error {
		return c.do(ctx, http.MethodPost, "/products", in.form(), &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*productuc.Product, error) {
	var out productuc.Product
	err := c.mutate(func() error {
		return c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), in.form(), &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.remove(ctx, "/products/"+url.PathEscape(id))
}

// Transactions

type CheckoutInput struct {
	CustomerName    string
	CustomerContact string
	CustomerAddress string
	Items           []trxuc.ItemInput
	PaymentProof    *File
	// IdempotencyKey is sent as the Idempotency-Key header when set.
	IdempotencyKey string
}

// TransactionInput edits a pending transaction's customer details.
type TransactionInput struct {
	CustomerName    string
	CustomerContact string
	CustomerAddress string
	PaymentProof    *File
}

func (c *Client) Checkout(ctx context.Context, in CheckoutInput) (*trxuc.Transaction, error) {
	items, err := json.Marshal(in.Items)
	if err != nil {
		return nil, err
	}
	f := newForm().
		set("customerName", in.CustomerName).
		set("customerContact", in.CustomerContact).
		set("customerAddress", in.CustomerAddress).
		set("purchasedItems", string(items)).
		file("paymentProof", in.PaymentProof)

	var headers []string
	if in.IdempotencyKey != "" {
		headers = append(headers, "Idempotency-Key", in.IdempotencyKey)
	}

	var out trxuc.Transaction
	err = c.mutate(func() error {
		return c.do(ctx, http.MethodPost, "/transactions/checkout", f, &out, headers...)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransactions returns all transactions, or only those with status when
// it is not empty.
func (c *Client) ListTransactions(ctx context.Context, status string) ([]trxuc.Transaction, error) {
	path := "/transactions"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []trxuc.Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*trxuc.Transaction, error) {
	var out trxuc.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (*trxuc.Transaction, error) {
	f := newForm().
		set("customerName", in.CustomerName).
		set("customerContact", in.CustomerContact).
		set("customerAddress", in.CustomerAddress).
		file("paymentProof", in.PaymentProof)

	var out trxuc.Transaction
	err := c.mutate(func() error {
		return c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), f, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTransactionStatus moves a pending transaction to paid or rejected.
func (c *Client) UpdateTransactionStatus(ctx context.Context, id, status string) (*trxuc.Transaction, error) {
	var out trxuc.Transaction
	body := map[string]string{"status": status}
	err := c.mutate(func() error {
		return c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id)+"/status", body, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.remove(ctx, "/transactions/"+url.PathEscape(id))
}
