package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	productuc "github.com/Glenferdinza/sporton/internal/usecase/product"
)

type ProductStoreAdapter struct {
	repo *ProductRepo
}

func NewProductStoreAdapter(repo *ProductRepo) *ProductStoreAdapter {
	return &ProductStoreAdapter{repo: repo}
}

func (a *ProductStoreAdapter) CategoryExists(ctx context.Context, categoryID string) (bool, error) {
	return a.repo.CategoryExists(ctx, categoryID)
}

func (a *ProductStoreAdapter) Create(ctx context.Context, in productuc.NewProduct) (*productuc.Product, error) {
	row, err := a.repo.Create(ctx, in.CategoryID, in.Name, in.Description, in.Price.String(), in.Stock, in.ImageURL)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, productuc.ErrCategoryMissing
		}
		return nil, err
	}
	return mapProductRow(row)
}

func (a *ProductStoreAdapter) List(ctx context.Context, q productuc.ListQuery) ([]productuc.Product, error) {
	rows, err := a.repo.List(ctx, q.CategoryID)
	if err != nil {
		return nil, err
	}
	out := make([]productuc.Product, 0, len(rows))
	for i := range rows {
		p, err := mapProductRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (a *ProductStoreAdapter) GetByID(ctx context.Context, id string) (*productuc.Product, error) {
	row, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, productuc.ErrNotFound
		}
		return nil, err
	}
	return mapProductRow(row)
}

func (a *ProductStoreAdapter) Update(ctx context.Context, id string, f productuc.Fields) (*productuc.Product, error) {
	var price *string
	if f.Price != nil {
		s := f.Price.String()
		price = &s
	}
	row, err := a.repo.Update(ctx, id, f.CategoryID, f.Name, f.Description, price, f.Stock, f.ImageURL)
	if err != nil {
		switch {
		case isNoRows(err):
			return nil, productuc.ErrNotFound
		case isForeignKeyViolation(err):
			return nil, productuc.ErrCategoryMissing
		}
		return nil, err
	}
	return mapProductRow(row)
}

func (a *ProductStoreAdapter) Delete(ctx context.Context, id string) error {
	ok, err := a.repo.Delete(ctx, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return productuc.ErrInUse
		}
		return err
	}
	if !ok {
		return productuc.ErrNotFound
	}
	return nil
}

func mapProductRow(r *ProductRow) (*productuc.Product, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, err
	}
	return &productuc.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		Stock:       r.Stock,
		Category:    productuc.CategoryRef{ID: r.CategoryID, Name: r.CategoryName},
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

var _ productuc.Store = (*ProductStoreAdapter)(nil)
