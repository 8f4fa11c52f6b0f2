package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Glenferdinza/sporton/internal/storage"
)

const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusRejected = "rejected"
)

type Transaction struct {
	ID              string          `json:"_id"`
	CustomerName    string          `json:"customerName"`
	CustomerContact string          `json:"customerContact"`
	CustomerAddress string          `json:"customerAddress"`
	PurchasedItems  []Item          `json:"purchasedItems"`
	TotalPayment    decimal.Decimal `json:"totalPayment"`
	PaymentProof    string          `json:"paymentProof"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Item embeds the product under "productId" the way the dashboard reads it.
type Item struct {
	Product   ProductRef      `json:"productId"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type ProductRef struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	ImageURL string          `json:"imageUrl"`
	Price    decimal.Decimal `json:"price"`
}

type ItemInput struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type CheckoutInput struct {
	CustomerName    string
	CustomerContact string
	CustomerAddress string
	Items           []ItemInput
	PaymentProof    *storage.Upload
}

type UpdateInput struct {
	CustomerName    *string
	CustomerContact *string
	CustomerAddress *string
	PaymentProof    *storage.Upload
}

type ListQuery struct {
	Status *string
}

// ProductSnapshot is the product state checkout prices against.
type ProductSnapshot struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

type NewItem struct {
	ProductID string
	Qty       int
	UnitPrice decimal.Decimal
}

type NewTransaction struct {
	CustomerName    string
	CustomerContact string
	CustomerAddress string
	Items           []NewItem
	TotalPayment    decimal.Decimal
	PaymentProof    string
}

// Fields holds the columns an edit touches; nil means unchanged.
type Fields struct {
	CustomerName    *string
	CustomerContact *string
	CustomerAddress *string
	PaymentProof    *string
}

// StatusChanged is the payload sent to notifiers after a verification.
type StatusChanged struct {
	TransactionID string          `json:"transactionId"`
	Status        string          `json:"status"`
	TotalPayment  decimal.Decimal `json:"totalPayment"`
	CustomerName  string          `json:"customerName"`
	ChangedAt     time.Time       `json:"changedAt"`
}
