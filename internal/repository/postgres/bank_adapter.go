package postgres

import (
	"context"

	bankuc "github.com/Glenferdinza/sporton/internal/usecase/bank"
)

type BankStoreAdapter struct {
	repo *BankRepo
}

func NewBankStoreAdapter(repo *BankRepo) *BankStoreAdapter {
	return &BankStoreAdapter{repo: repo}
}

func (a *BankStoreAdapter) Create(ctx context.Context, in bankuc.CreateInput) (*bankuc.Bank, error) {
	row, err := a.repo.Create(ctx, in.BankName, in.AccountNumber, in.AccountName)
	if err != nil {
		return nil, err
	}
	return mapBankRow(row), nil
}

func (a *BankStoreAdapter) List(ctx context.Context) ([]bankuc.Bank, error) {
	rows, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]bankuc.Bank, 0, len(rows))
	for i := range rows {
		out = append(out, *mapBankRow(&rows[i]))
	}
	return out, nil
}

func (a *BankStoreAdapter) GetByID(ctx context.Context, id string) (*bankuc.Bank, error) {
	row, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, bankuc.ErrNotFound
		}
		return nil, err
	}
	return mapBankRow(row), nil
}

func (a *BankStoreAdapter) Update(ctx context.Context, id string, in bankuc.UpdateInput) (*bankuc.Bank, error) {
	row, err := a.repo.Update(ctx, id, in.BankName, in.AccountNumber, in.AccountName)
	if err != nil {
		if isNoRows(err) {
			return nil, bankuc.ErrNotFound
		}
		return nil, err
	}
	return mapBankRow(row), nil
}

func (a *BankStoreAdapter) Delete(ctx context.Context, id string) error {
	ok, err := a.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return bankuc.ErrNotFound
	}
	return nil
}

func mapBankRow(r *BankRow) *bankuc.Bank {
	return &bankuc.Bank{
		ID:            r.ID,
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
		AccountName:   r.AccountName,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

var _ bankuc.Store = (*BankStoreAdapter)(nil)
