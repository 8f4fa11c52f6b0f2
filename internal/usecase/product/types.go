package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Glenferdinza/sporton/internal/storage"
)

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    CategoryRef     `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type CreateInput struct {
	Name        string
	Description string
	Price       string // decimal text, e.g. "450000" or "199.90"
	Stock       int
	CategoryID  string
	Image       *storage.Upload
}

type UpdateInput struct {
	Name        *string
	Description *string
	Price       *string
	Stock       *int
	CategoryID  *string
	Image       *storage.Upload
}

type ListQuery struct {
	CategoryID *string
}

// NewProduct is a validated product ready to insert.
type NewProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  string
	ImageURL    string
}

// Fields holds the columns an update touches; nil means unchanged.
type Fields struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *string
	ImageURL    *string
}
