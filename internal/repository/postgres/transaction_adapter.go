package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	trxuc "github.com/Glenferdinza/sporton/internal/usecase/transaction"
)

type TransactionStoreAdapter struct {
	repo *TransactionRepo
}

func NewTransactionStoreAdapter(repo *TransactionRepo) *TransactionStoreAdapter {
	return &TransactionStoreAdapter{repo: repo}
}

func (a *TransactionStoreAdapter) ProductsByIDs(ctx context.Context, ids []string) (map[string]trxuc.ProductSnapshot, error) {
	rows, err := a.repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]trxuc.ProductSnapshot, len(rows))
	for _, r := range rows {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return nil, err
		}
		out[r.ID] = trxuc.ProductSnapshot{ID: r.ID, Name: r.Name, Price: price, Stock: r.Stock}
	}
	return out, nil
}

func (a *TransactionStoreAdapter) Create(ctx context.Context, in trxuc.NewTransaction) (*trxuc.Transaction, error) {
	tx, err := a.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	head, err := insertTransaction(ctx, tx,
		in.CustomerName, in.CustomerContact, in.CustomerAddress,
		in.TotalPayment.StringFixed(2), in.PaymentProof,
	)
	if err != nil {
		return nil, err
	}

	for _, it := range in.Items {
		if err := insertTransactionItem(ctx, tx, head.ID, it.ProductID, it.Qty, it.UnitPrice.StringFixed(2)); err != nil {
			if isForeignKeyViolation(err) {
				return nil, fmt.Errorf("%w: %s", trxuc.ErrProductMissing, it.ProductID)
			}
			return nil, err
		}
	}

	items, err := listTransactionItems(ctx, tx, []string{head.ID})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return mapTransactionRow(head, items[head.ID])
}

func (a *TransactionStoreAdapter) List(ctx context.Context, q trxuc.ListQuery) ([]trxuc.Transaction, error) {
	rows, err := a.repo.List(ctx, q.Status)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	items, err := a.repo.ListItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]trxuc.Transaction, 0, len(rows))
	for i := range rows {
		t, err := mapTransactionRow(&rows[i], items[rows[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (a *TransactionStoreAdapter) GetByID(ctx context.Context, id string) (*trxuc.Transaction, error) {
	row, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, trxuc.ErrNotFound
		}
		return nil, err
	}
	return a.withItems(ctx, row)
}

func (a *TransactionStoreAdapter) Update(ctx context.Context, id string, f trxuc.Fields) (*trxuc.Transaction, error) {
	row, err := a.repo.UpdatePending(ctx, id, f.CustomerName, f.CustomerContact, f.CustomerAddress, f.PaymentProof)
	if err != nil {
		if !isNoRows(err) {
			return nil, err
		}
		// missing, or verified since the caller last looked
		if _, gerr := a.repo.GetByID(ctx, id); gerr != nil {
			if isNoRows(gerr) {
				return nil, trxuc.ErrNotFound
			}
			return nil, gerr
		}
		return nil, trxuc.ErrNotEditable
	}
	return a.withItems(ctx, row)
}

func (a *TransactionStoreAdapter) Delete(ctx context.Context, id string) error {
	ok, err := a.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return trxuc.ErrNotFound
	}
	return nil
}

func (a *TransactionStoreAdapter) UpdateStatus(ctx context.Context, id, status string) (*trxuc.Transaction, error) {
	tx, err := a.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := lockTransactionStatus(ctx, tx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, trxuc.ErrNotFound
		}
		return nil, err
	}
	if cur != trxuc.StatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", trxuc.ErrInvalidTransition, cur, status)
	}

	if status == trxuc.StatusPaid {
		qtys, err := listTransactionQtys(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		for _, m := range qtys {
			name, stock, err := lockProductStock(ctx, tx, m.ProductID)
			if err != nil {
				return nil, err
			}
			if stock < m.Qty {
				return nil, fmt.Errorf("%w: %s has %d, requested %d", trxuc.ErrInsufficientStock, name, stock, m.Qty)
			}
			if err := deductStock(ctx, tx, m.ProductID, m.Qty); err != nil {
				return nil, err
			}
		}
	}

	row, err := updateTransactionStatus(ctx, tx, id, status)
	if err != nil {
		return nil, err
	}
	items, err := listTransactionItems(ctx, tx, []string{id})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return mapTransactionRow(row, items[id])
}

func (a *TransactionStoreAdapter) withItems(ctx context.Context, row *TransactionRow) (*trxuc.Transaction, error) {
	items, err := a.repo.ListItems(ctx, []string{row.ID})
	if err != nil {
		return nil, err
	}
	return mapTransactionRow(row, items[row.ID])
}

func mapTransactionRow(r *TransactionRow, items []TransactionItemRow) (*trxuc.Transaction, error) {
	total, err := decimal.NewFromString(r.TotalPayment)
	if err != nil {
		return nil, err
	}

	out := &trxuc.Transaction{
		ID:              r.ID,
		CustomerName:    r.CustomerName,
		CustomerContact: r.CustomerContact,
		CustomerAddress: r.CustomerAddress,
		PurchasedItems:  make([]trxuc.Item, 0, len(items)),
		TotalPayment:    total,
		PaymentProof:    r.PaymentProof,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	for _, it := range items {
		unit, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(it.ProductPrice)
		if err != nil {
			return nil, err
		}
		out.PurchasedItems = append(out.PurchasedItems, trxuc.Item{
			Product: trxuc.ProductRef{
				ID:       it.ProductID,
				Name:     it.ProductName,
				ImageURL: it.ProductImageURL,
				Price:    price,
			},
			Qty:       it.Qty,
			UnitPrice: unit,
		})
	}
	return out, nil
}

var _ trxuc.Store = (*TransactionStoreAdapter)(nil)
