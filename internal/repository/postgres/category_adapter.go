package postgres

import (
	"context"

	categoryuc "github.com/Glenferdinza/sporton/internal/usecase/category"
)

type CategoryStoreAdapter struct {
	repo *CategoryRepo
}

func NewCategoryStoreAdapter(repo *CategoryRepo) *CategoryStoreAdapter {
	return &CategoryStoreAdapter{repo: repo}
}

func (a *CategoryStoreAdapter) Create(ctx context.Context, name, description, imageURL string) (*categoryuc.Category, error) {
	row, err := a.repo.Create(ctx, name, description, imageURL)
	if err != nil {
		return nil, err
	}
	return mapCategoryRow(row), nil
}

func (a *CategoryStoreAdapter) List(ctx context.Context) ([]categoryuc.Category, error) {
	rows, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]categoryuc.Category, 0, len(rows))
	for i := range rows {
		out = append(out, *mapCategoryRow(&rows[i]))
	}
	return out, nil
}

func (a *CategoryStoreAdapter) GetByID(ctx context.Context, id string) (*categoryuc.Category, error) {
	row, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, categoryuc.ErrNotFound
		}
		return nil, err
	}
	return mapCategoryRow(row), nil
}

func (a *CategoryStoreAdapter) Update(ctx context.Context, id string, f categoryuc.Fields) (*categoryuc.Category, error) {
	row, err := a.repo.Update(ctx, id, f.Name, f.Description, f.ImageURL)
	if err != nil {
		if isNoRows(err) {
			return nil, categoryuc.ErrNotFound
		}
		return nil, err
	}
	return mapCategoryRow(row), nil
}

func (a *CategoryStoreAdapter) Delete(ctx context.Context, id string) error {
	ok, err := a.repo.Delete(ctx, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return categoryuc.ErrInUse
		}
		return err
	}
	if !ok {
		return categoryuc.ErrNotFound
	}
	return nil
}

func mapCategoryRow(r *CategoryRow) *categoryuc.Category {
	return &categoryuc.Category{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

var _ categoryuc.Store = (*CategoryStoreAdapter)(nil)
