package transaction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Glenferdinza/sporton/internal/logging"
	"github.com/Glenferdinza/sporton/internal/storage"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("transaction not found")
	ErrProductMissing    = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotEditable       = errors.New("transaction is no longer pending")
	ErrProofRequired     = errors.New("payment proof is required")
)

const (
	proofFolder = "transactions"

	// maxQty matches the integer column transaction_items.qty.
	maxQty = math.MaxInt32

	EventStatusChanged = "transaction.status_changed"
)

type Store interface {
	ProductsByIDs(ctx context.Context, ids []string) (map[string]ProductSnapshot, error)

	Create(ctx context.Context, in NewTransaction) (*Transaction, error)
	List(ctx context.Context, q ListQuery) ([]Transaction, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	Update(ctx context.Context, id string, f Fields) (*Transaction, error)
	Delete(ctx context.Context, id string) error

	// UpdateStatus moves a pending transaction to status in one DB transaction,
	// deducting stock when status is paid.
	UpdateStatus(ctx context.Context, id string, status string) (*Transaction, error)
}

type ImageStore interface {
	Save(ctx context.Context, folder string, up storage.Upload) (string, error)
	Remove(ctx context.Context, publicPath string) error
}

type Notifier interface {
	Notify(ctx context.Context, event string, payload any) error
}

type Recorder interface {
	RecordCheckout(ok bool)
	RecordVerification(status string)
}

type Usecase struct {
	store    Store
	images   ImageStore
	notifier Notifier
	metrics  Recorder
	log      *logging.Logger
	now      func() time.Time

	pending sync.WaitGroup
}

type Option func(*Usecase)

func WithNotifier(n Notifier) Option {
	return func(u *Usecase) {
		if n != nil {
			u.notifier = n
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(u *Usecase) {
		if r != nil {
			u.metrics = r
		}
	}
}

func New(store Store, images ImageStore, opts ...Option) *Usecase {
	u := &Usecase{
		store:    store,
		images:   images,
		notifier: nopNotifier{},
		metrics:  nopRecorder{},
		log:      logging.L().Named("transaction"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) Checkout(ctx context.Context, in CheckoutInput) (out *Transaction, err error) {
	defer func() { u.metrics.RecordCheckout(err == nil) }()

	nt := NewTransaction{
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerContact: strings.TrimSpace(in.CustomerContact),
		CustomerAddress: strings.TrimSpace(in.CustomerAddress),
	}
	if nt.CustomerName == "" || nt.CustomerContact == "" || nt.CustomerAddress == "" {
		return nil, ErrInvalidInput
	}
	if in.PaymentProof == nil {
		return nil, ErrProofRequired
	}

	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.store.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductMissing, it.ProductID)
		}
		if p.Stock < it.Qty {
			return nil, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, p.Name, p.Stock, it.Qty)
		}
		nt.Items = append(nt.Items, NewItem{ProductID: p.ID, Qty: it.Qty, UnitPrice: p.Price})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	nt.TotalPayment = total

	proof, err := u.images.Save(ctx, proofFolder, *in.PaymentProof)
	if err != nil {
		return nil, err
	}
	nt.PaymentProof = proof

	out, err = u.store.Create(ctx, nt)
	if err != nil {
		u.discard(ctx, proof)
		return nil, err
	}
	return out, nil
}

func (u *Usecase) List(ctx context.Context, q ListQuery) ([]Transaction, error) {
	if q.Status != nil {
		switch *q.Status {
		case "":
			q.Status = nil
		case StatusPending, StatusPaid, StatusRejected:
		default:
			return nil, ErrInvalidStatus
		}
	}
	return u.store.List(ctx, q)
}

func (u *Usecase) GetByID(ctx context.Context, id string) (*Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return u.store.GetByID(ctx, id)
}

func (u *Usecase) Update(ctx context.Context, id string, in UpdateInput) (*Transaction, error) {
	cur, err := u.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != StatusPending {
		return nil, ErrNotEditable
	}

	var f Fields
	for _, p := range []struct {
		in  *string
		out **string
	}{
		{in.CustomerName, &f.CustomerName},
		{in.CustomerContact, &f.CustomerContact},
		{in.CustomerAddress, &f.CustomerAddress},
	} {
		if p.in == nil {
			continue
		}
		v := strings.TrimSpace(*p.in)
		if v == "" {
			return nil, ErrInvalidInput
		}
		*p.out = &v
	}
	if in.PaymentProof != nil {
		proof, err := u.images.Save(ctx, proofFolder, *in.PaymentProof)
		if err != nil {
			return nil, err
		}
		f.PaymentProof = &proof
	}

	out, err := u.store.Update(ctx, id, f)
	if err != nil {
		if f.PaymentProof != nil {
			u.discard(ctx, *f.PaymentProof)
		}
		return nil, err
	}
	if f.PaymentProof != nil {
		u.discard(ctx, cur.PaymentProof)
	}
	return out, nil
}

// UpdateStatus verifies a pending transaction. Only pending -> paid and
// pending -> rejected exist; the store enforces that under a row lock.
func (u *Usecase) UpdateStatus(ctx context.Context, id, status string) (*Transaction, error) {
	if status != StatusPaid && status != StatusRejected {
		return nil, ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	out, err := u.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	u.metrics.RecordVerification(status)

	ev := StatusChanged{
		TransactionID: out.ID,
		Status:        out.Status,
		TotalPayment:  out.TotalPayment,
		CustomerName:  out.CustomerName,
		ChangedAt:     u.now().UTC(),
	}
	u.pending.Add(1)
	go func() {
		defer u.pending.Done()
		u.notify(context.WithoutCancel(ctx), ev)
	}()

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
	u.discard(ctx, cur.PaymentProof)
	return nil
}

// Wait blocks until queued status notifications have been sent or ctx ends.
func (u *Usecase) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *Usecase) notify(ctx context.Context, ev StatusChanged) {
	if err := u.notifier.Notify(ctx, EventStatusChanged, ev); err != nil {
		u.log.Warn("status notification failed",
			zap.String("transaction_id", ev.TransactionID),
			zap.String("status", ev.Status),
			zap.Error(err),
		)
	}
}

func (u *Usecase) discard(ctx context.Context, p string) {
	if p == "" {
		return
	}
	if err := u.images.Remove(ctx, p); err != nil {
		u.log.Warn("remove payment proof failed", zap.String("path", p), zap.Error(err))
	}
}

// mergeItems validates the cart and folds repeated products into one line,
// keeping first-seen order.
func mergeItems(in []ItemInput) ([]ItemInput, error) {
	if len(in) == 0 {
		return nil, ErrInvalidInput
	}
	idx := map[string]int{}
	out := make([]ItemInput, 0, len(in))
	for _, it := range in {
		if it.Qty < 1 || it.Qty > maxQty {
			return nil, ErrInvalidInput
		}
		if _, err := uuid.Parse(it.ProductID); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductMissing, it.ProductID)
		}
		if i, ok := idx[it.ProductID]; ok {
			if out[i].Qty > maxQty-it.Qty {
				return nil, ErrInvalidInput
			}
			out[i].Qty += it.Qty
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, any) error { return nil }

type nopRecorder struct{}

func (nopRecorder) RecordCheckout(bool)       {}
func (nopRecorder) RecordVerification(string) {}
