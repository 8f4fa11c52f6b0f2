package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRow struct {
	ID              string
	CustomerName    string
	CustomerContact string
	CustomerAddress string
	TotalPayment    string
	PaymentProof    string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type TransactionItemRow struct {
	TransactionID   string
	ProductID       string
	ProductName     string
	ProductImageURL string
	ProductPrice    string
	Qty             int
	UnitPrice       string
}

type ProductStockRow struct {
	ID    string
	Name  string
	Price string
	Stock int
}

type TrxItemQty struct {
	ProductID string
	Qty       int
}

const transactionColumns = `id::text, customer_name, customer_contact, customer_address,
       total_payment::text, payment_proof, status, created_at, updated_at`

type TransactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepo(db *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.db.BeginTx(ctx, pgx.TxOptions{})
}

func scanTransaction(row pgx.Row) (*TransactionRow, error) {
	var t TransactionRow
	if err := row.Scan(
		&t.ID, &t.CustomerName, &t.CustomerContact, &t.CustomerAddress,
		&t.TotalPayment, &t.PaymentProof, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) ProductsByIDs(ctx context.Context, ids []string) ([]ProductStockRow, error) {
	const q = `
SELECT id::text, name, price::text, stock
FROM products
WHERE id = ANY($1::uuid[]);
`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ProductStockRow, 0, len(ids))
	for rows.Next() {
		var p ProductStockRow
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) List(ctx context.Context, status *string) ([]TransactionRow, error) {
	q := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE ($1::text IS NULL OR status = $1)
ORDER BY created_at DESC;
`
	rows, err := r.db.Query(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TransactionRow, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*TransactionRow, error) {
	return getTransaction(ctx, r.db, id)
}

func (r *TransactionRepo) ListItems(ctx context.Context, transactionIDs []string) (map[string][]TransactionItemRow, error) {
	return listTransactionItems(ctx, r.db, transactionIDs)
}

// UpdatePending edits a transaction only while it is pending. It returns
// pgx.ErrNoRows when the row is missing or no longer pending.
func (r *TransactionRepo) UpdatePending(ctx context.Context, id string, name, contact, address, proof *string) (*TransactionRow, error) {
	q := `
UPDATE transactions
SET
  customer_name = COALESCE($2, customer_name),
  customer_contact = COALESCE($3, customer_contact),
  customer_address = COALESCE($4, customer_address),
  payment_proof = COALESCE($5, payment_proof),
  updated_at = now()
WHERE id = $1::uuid AND status = 'pending'
RETURNING ` + transactionColumns + `;
`
	return scanTransaction(r.db.QueryRow(ctx, q, id, name, contact, address, proof))
}

func (r *TransactionRepo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1::uuid`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func getTransaction(ctx context.Context, q dbtx, id string) (*TransactionRow, error) {
	sql := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1::uuid;`
	return scanTransaction(q.QueryRow(ctx, sql, id))
}

func listTransactionItems(ctx context.Context, q dbtx, transactionIDs []string) (map[string][]TransactionItemRow, error) {
	const sql = `
SELECT ti.transaction_id::text, p.id::text, p.name, p.image_url, p.price::text,
       ti.qty, ti.unit_price::text
FROM transaction_items ti
JOIN products p ON p.id = ti.product_id
WHERE ti.transaction_id = ANY($1::uuid[])
ORDER BY ti.created_at, ti.id;
`
	out := make(map[string][]TransactionItemRow, len(transactionIDs))
	if len(transactionIDs) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx, sql, transactionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it TransactionItemRow
		if err := rows.Scan(
			&it.TransactionID, &it.ProductID, &it.ProductName, &it.ProductImageURL, &it.ProductPrice,
			&it.Qty, &it.UnitPrice,
		); err != nil {
			return nil, err
		}
		out[it.TransactionID] = append(out[it.TransactionID], it)
	}
	return out, rows.Err()
}

func insertTransaction(ctx context.Context, tx pgx.Tx, name, contact, address, total, proof string) (*TransactionRow, error) {
	q := `
INSERT INTO transactions (customer_name, customer_contact, customer_address, total_payment, payment_proof)
VALUES ($1, $2, $3, $4::numeric, $5)
RETURNING ` + transactionColumns + `;
`
	return scanTransaction(tx.QueryRow(ctx, q, name, contact, address, total, proof))
}

func insertTransactionItem(ctx context.Context, tx pgx.Tx, transactionID, productID string, qty int, unitPrice string) error {
	const q = `
INSERT INTO transaction_items (transaction_id, product_id, qty, unit_price)
VALUES ($1::uuid, $2::uuid, $3, $4::numeric);
`
	_, err := tx.Exec(ctx, q, transactionID, productID, qty, unitPrice)
	return err
}

func lockTransactionStatus(ctx context.Context, tx pgx.Tx, transactionID string) (string, error) {
	const q = `
SELECT status
FROM transactions
WHERE id = $1::uuid
FOR UPDATE;
`
	var status string
	if err := tx.QueryRow(ctx, q, transactionID).Scan(&status); err != nil {
		return "", err
	}
	return status, nil
}

// listTransactionQtys sums quantities per product, ordered by product id so
// concurrent verifications lock products in the same order.
func listTransactionQtys(ctx context.Context, tx pgx.Tx, transactionID string) ([]TrxItemQty, error) {
	const q = `
SELECT product_id::text, SUM(qty)::int
FROM transaction_items
WHERE transaction_id = $1::uuid
GROUP BY product_id
ORDER BY product_id;
`
	rows, err := tx.Query(ctx, q, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TrxItemQty, 0, 4)
	for rows.Next() {
		var m TrxItemQty
		if err := rows.Scan(&m.ProductID, &m.Qty); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func lockProductStock(ctx context.Context, tx pgx.Tx, productID string) (name string, stock int, err error) {
	const q = `
SELECT name, stock
FROM products
WHERE id = $1::uuid
FOR UPDATE;
`
	if err := tx.QueryRow(ctx, q, productID).Scan(&name, &stock); err != nil {
		return "", 0, err
	}
	return name, stock, nil
}

func deductStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	const q = `
UPDATE products
SET stock = stock - $2,
    updated_at = now()
WHERE id = $1::uuid;
`
	_, err := tx.Exec(ctx, q, productID, qty)
	return err
}

func updateTransactionStatus(ctx context.Context, tx pgx.Tx, transactionID, status string) (*TransactionRow, error) {
	q := `
UPDATE transactions
SET status = $2,
    updated_at = now()
WHERE id = $1::uuid
RETURNING ` + transactionColumns + `;
`
	return scanTransaction(tx.QueryRow(ctx, q, transactionID, status))
}
