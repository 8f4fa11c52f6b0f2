package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BankRow struct {
	ID            string
	BankName      string
	AccountNumber string
	AccountName   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const bankColumns = `id::text, bank_name, account_number, account_name, created_at, updated_at`

type BankRepo struct {
	db *pgxpool.Pool
}

func NewBankRepo(db *pgxpool.Pool) *BankRepo {
	return &BankRepo{db: db}
}

func scanBank(row pgx.Row) (*BankRow, error) {
	var b BankRow
	if err := row.Scan(&b.ID, &b.BankName, &b.AccountNumber, &b.AccountName, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BankRepo) Create(ctx context.Context, bankName, accountNumber, accountName string) (*BankRow, error) {
	q := `
INSERT INTO banks (bank_name, account_number, account_name)
VALUES ($1, $2, $3)
RETURNING ` + bankColumns + `;
`
	return scanBank(r.db.QueryRow(ctx, q, bankName, accountNumber, accountName))
}

func (r *BankRepo) List(ctx context.Context) ([]BankRow, error) {
	q := `SELECT ` + bankColumns + ` FROM banks ORDER BY created_at DESC;`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BankRow, 0)
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BankRepo) GetByID(ctx context.Context, id string) (*BankRow, error) {
	q := `SELECT ` + bankColumns + ` FROM banks WHERE id = $1::uuid;`
	return scanBank(r.db.QueryRow(ctx, q, id))
}

func (r *BankRepo) Update(ctx context.Context, id string, bankName, accountNumber, accountName *string) (*BankRow, error) {
	q := `
UPDATE banks
SET
  bank_name = COALESCE($2, bank_name),
  account_number = COALESCE($3, account_number),
  account_name = COALESCE($4, account_name),
  updated_at = now()
WHERE id = $1::uuid
RETURNING ` + bankColumns + `;
`
	return scanBank(r.db.QueryRow(ctx, q, id, bankName, accountNumber, accountName))
}

// Delete reports whether a row was removed.
func (r *BankRepo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM banks WHERE id = $1::uuid`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
