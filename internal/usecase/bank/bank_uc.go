package bank

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("bank not found")
)

type Store interface {
	Create(ctx context.Context, in CreateInput) (*Bank, error)
	List(ctx context.Context) ([]Bank, error)
	GetByID(ctx context.Context, id string) (*Bank, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Bank, error)
	Delete(ctx context.Context, id string) error
}

type Usecase struct {
	store Store
}

func New(store Store) *Usecase {
	return &Usecase{store: store}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*Bank, error) {
	in.BankName = strings.TrimSpace(in.BankName)
	in.AccountName = strings.TrimSpace(in.AccountName)

	num, ok := normalizeAccountNumber(in.AccountNumber)
	if !ok || in.BankName == "" || in.AccountName == "" {
		return nil, ErrInvalidInput
	}
	in.AccountNumber = num

	return u.store.Create(ctx, in)
}

func (u *Usecase) List(ctx context.Context) ([]Bank, error) {
	return u.store.List(ctx)
}

func (u *Usecase) GetByID(ctx context.Context, id string) (*Bank, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return u.store.GetByID(ctx, id)
}

func (u *Usecase) Update(ctx context.Context, id string, in UpdateInput) (*Bank, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	if in.BankName != nil {
		v := strings.TrimSpace(*in.BankName)
		if v == "" {
			return nil, ErrInvalidInput
		}
		in.BankName = &v
	}
	if in.AccountName != nil {
		v := strings.TrimSpace(*in.AccountName)
		if v == "" {
			return nil, ErrInvalidInput
		}
		in.AccountName = &v
	}
	if in.AccountNumber != nil {
		v, ok := normalizeAccountNumber(*in.AccountNumber)
		if !ok {
			return nil, ErrInvalidInput
		}
		in.AccountNumber = &v
	}

	return u.store.Update(ctx, id, in)
}

func (u *Usecase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return u.store.Delete(ctx, id)
}

// normalizeAccountNumber drops spaces and dashes; what remains must be digits.
func normalizeAccountNumber(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ' || r == '-':
			continue
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			return "", false
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}
