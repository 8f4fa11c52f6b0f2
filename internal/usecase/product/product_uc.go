package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Glenferdinza/sporton/internal/logging"
	"github.com/Glenferdinza/sporton/internal/storage"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidFilter   = errors.New("category filter must be a valid id")
	ErrNotFound        = errors.New("product not found")
	ErrCategoryMissing = errors.New("category not found")
	ErrInUse           = errors.New("product is referenced by transactions")
)

const imageFolder = "products"

type Store interface {
	CategoryExists(ctx context.Context, categoryID string) (bool, error)

	Create(ctx context.Context, in NewProduct) (*Product, error)
	List(ctx context.Context, q ListQuery) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, id string, f Fields) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type ImageStore interface {
	Save(ctx context.Context, folder string, up storage.Upload) (string, error)
	Remove(ctx context.Context, publicPath string) error
}

type Usecase struct {
	store  Store
	images ImageStore
	log    *logging.Logger
}

func New(store Store, images ImageStore) *Usecase {
	return &Usecase{store: store, images: images, log: logging.L().Named("product")}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Stock < 0 {
		return nil, ErrInvalidInput
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	if err := u.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	np := NewProduct{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
	}
	if in.Image != nil {
		p, err := u.images.Save(ctx, imageFolder, *in.Image)
		if err != nil {
			return nil, err
		}
		np.ImageURL = p
	}

	out, err := u.store.Create(ctx, np)
	if err != nil {
		u.discard(ctx, np.ImageURL)
		return nil, err
	}
	return out, nil
}

func (u *Usecase) List(ctx context.Context, q ListQuery) ([]Product, error) {
	if q.CategoryID != nil {
		if *q.CategoryID == "" {
			q.CategoryID = nil
		} else if _, err := uuid.Parse(*q.CategoryID); err != nil {
			return nil, ErrInvalidFilter
		}
	}
	return u.store.List(ctx, q)
}

func (u *Usecase) GetByID(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return u.store.GetByID(ctx, id)
}

func (u *Usecase) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	cur, err := u.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var f Fields
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return nil, ErrInvalidInput
		}
		f.Name = &v
	}
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		f.Description = &v
	}
	if in.Price != nil {
		p, err := parsePrice(*in.Price)
		if err != nil {
			return nil, err
		}
		f.Price = &p
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, ErrInvalidInput
		}
		f.Stock = in.Stock
	}
	if in.CategoryID != nil && *in.CategoryID != cur.Category.ID {
		if err := u.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		f.CategoryID = in.CategoryID
	}
	if in.Image != nil {
		p, err := u.images.Save(ctx, imageFolder, *in.Image)
		if err != nil {
			return nil, err
		}
		f.ImageURL = &p
	}

	out, err := u.store.Update(ctx, id, f)
	if err != nil {
		if f.ImageURL != nil {
			u.discard(ctx, *f.ImageURL)
		}
		return nil, err
	}
	if f.ImageURL != nil {
		u.discard(ctx, cur.ImageURL)
	}
	return out, nil
}

func (u *Usecase) Delete(ctx context.Context, id string) error {
	cur, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.store.Delete(ctx, id); err != nil {
		return err
	}
	u.discard(ctx, cur.ImageURL)
	return nil
}

func (u *Usecase) requireCategory(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrCategoryMissing
	}
	ok, err := u.store.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryMissing
	}
	return nil
}

func (u *Usecase) discard(ctx context.Context, p string) {
	if p == "" {
		return
	}
	if err := u.images.Remove(ctx, p); err != nil {
		u.log.Warn("remove image failed", zap.String("path", p), zap.Error(err))
	}
}

// parsePrice accepts a positive amount with at most two decimals.
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() || !d.Equal(d.Round(2)) {
		return decimal.Zero, ErrInvalidInput
	}
	return d, nil
}
