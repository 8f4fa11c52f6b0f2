package category

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Glenferdinza/sporton/internal/logging"
	"github.com/Glenferdinza/sporton/internal/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("category not found")
	ErrInUse        = errors.New("category still has products")
)

const imageFolder = "categories"

type Store interface {
	Create(ctx context.Context, name, description, imageURL string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Update(ctx context.Context, id string, f Fields) (*Category, error)
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
	return &Usecase{store: store, images: images, log: logging.L().Named("category")}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	imageURL := ""
	if in.Image != nil {
		p, err := u.images.Save(ctx, imageFolder, *in.Image)
		if err != nil {
			return nil, err
		}
		imageURL = p
	}

	out, err := u.store.Create(ctx, name, strings.TrimSpace(in.Description), imageURL)
	if err != nil {
		u.discard(ctx, imageURL)
		return nil, err
	}
	return out, nil
}

func (u *Usecase) List(ctx context.Context) ([]Category, error) {
	return u.store.List(ctx)
}

func (u *Usecase) GetByID(ctx context.Context, id string) (*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return u.store.GetByID(ctx, id)
}

func (u *Usecase) Update(ctx context.Context, id string, in UpdateInput) (*Category, error) {
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

func (u *Usecase) discard(ctx context.Context, p string) {
	if p == "" {
		return
	}
	if err := u.images.Remove(ctx, p); err != nil {
		u.log.Warn("remove image failed", zap.String("path", p), zap.Error(err))
	}
}
