package bank

import "time"

type Bank struct {
	ID            string    `json:"_id"`
	BankName      string    `json:"bankName"`
	AccountNumber string    `json:"accountNumber"`
	AccountName   string    `json:"accountName"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type CreateInput struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

type UpdateInput struct {
	BankName      *string `json:"bankName"`
	AccountNumber *string `json:"accountNumber"`
	AccountName   *string `json:"accountName"`
}
