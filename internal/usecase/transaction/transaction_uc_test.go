package transaction

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Glenferdinza/sporton/internal/storage"
)

type memStore struct {
	products map[string]ProductSnapshot
	txs      map[string]Transaction
}

func newMemStore() *memStore {
	return &memStore{products: map[string]ProductSnapshot{}, txs: map[string]Transaction{}}
}

func (s *memStore) addProduct(name, price string, stock int) string {
	id := uuid.NewString()
	s.products[id] = ProductSnapshot{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	return id
}

func (s *memStore) ProductsByIDs(_ context.Context, ids []string) (map[string]ProductSnapshot, error) {
	out := map[string]ProductSnapshot{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *memStore) Create(_ context.Context, in NewTransaction) (*Transaction, error) {
	t := Transaction{
		ID:              uuid.NewString(),
		CustomerName:    in.CustomerName,
		CustomerContact: in.CustomerContact,
		CustomerAddress: in.CustomerAddress,
		TotalPayment:    in.TotalPayment,
		PaymentProof:    in.PaymentProof,
		Status:          StatusPending,
		CreatedAt:       time.Now(),
	}
	for _, it := range in.Items {
		p := s.products[it.ProductID]
		t.PurchasedItems = append(t.PurchasedItems, Item{
			Product:   ProductRef{ID: p.ID, Name: p.Name, Price: p.Price},
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
		})
	}
	s.txs[t.ID] = t
	return &t, nil
}

func (s *memStore) List(_ context.Context, q ListQuery) ([]Transaction, error) {
	out := []Transaction{}
	for _, t := range s.txs {
		if q.Status != nil && t.Status != *q.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*Transaction, error) {
	t, ok := s.txs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *memStore) Update(_ context.Context, id string, f Fields) (*Transaction, error) {
	t, ok := s.txs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if f.CustomerName != nil {
		t.CustomerName = *f.CustomerName
	}
	if f.CustomerContact != nil {
		t.CustomerContact = *f.CustomerContact
	}
	if f.CustomerAddress != nil {
		t.CustomerAddress = *f.CustomerAddress
	}
	if f.PaymentProof != nil {
		t.PaymentProof = *f.PaymentProof
	}
	s.txs[id] = t
	return &t, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	if _, ok := s.txs[id]; !ok {
		return ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, id, status string) (*Transaction, error) {
	t, ok := s.txs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if t.Status != StatusPending {
		return nil, ErrInvalidTransition
	}
	if status == StatusPaid {
		for _, it := range t.PurchasedItems {
			if s.products[it.Product.ID].Stock < it.Qty {
				return nil, ErrInsufficientStock
			}
		}
		for _, it := range t.PurchasedItems {
			p := s.products[it.Product.ID]
			p.Stock -= it.Qty
			s.products[p.ID] = p
		}
	}
	t.Status = status
	s.txs[id] = t
	return &t, nil
}

type fakeImages struct {
	n       int
	removed []string
}

func (f *fakeImages) Save(_ context.Context, folder string, _ storage.Upload) (string, error) {
	f.n++
	return "/uploads/" + folder + "/" + strings.Repeat("t", f.n) + ".png", nil
}

func (f *fakeImages) Remove(_ context.Context, p string) error {
	f.removed = append(f.removed, p)
	return nil
}

type chanNotifier struct {
	events chan StatusChanged
}

func (n *chanNotifier) Notify(_ context.Context, event string, payload any) error {
	if event == EventStatusChanged {
		n.events <- payload.(StatusChanged)
	}
	return nil
}

type countRecorder struct {
	checkouts map[bool]int
	verified  map[string]int
}

func (r *countRecorder) RecordCheckout(ok bool)            { r.checkouts[ok]++ }
func (r *countRecorder) RecordVerification(status string) { r.verified[status]++ }

func proof() *storage.Upload {
	return &storage.Upload{Filename: "proof.png", Size: 1, Content: strings.NewReader("x")}
}

func checkoutInput(items ...ItemInput) CheckoutInput {
	return CheckoutInput{
		CustomerName:    "Budi",
		CustomerContact: "08123456789",
		CustomerAddress: "Jl. Merdeka 1, Bandung",
		Items:           items,
		PaymentProof:    proof(),
	}
}

func TestCheckout_MergesItemsAndComputesTotal(t *testing.T) {
	store := newMemStore()
	shoe := store.addProduct("Shoe", "450000", 5)
	ball := store.addProduct("Ball", "125000.50", 10)
	rec := &countRecorder{checkouts: map[bool]int{}, verified: map[string]int{}}
	uc := New(store, &fakeImages{}, WithRecorder(rec))

	tx, err := uc.Checkout(context.Background(), checkoutInput(
		ItemInput{ProductID: shoe, Qty: 1},
		ItemInput{ProductID: ball, Qty: 2},
		ItemInput{ProductID: shoe, Qty: 1},
	))
	require.NoError(t, err)
	require.Equal(t, StatusPending, tx.Status)
	require.Len(t, tx.PurchasedItems, 2)
	require.Equal(t, 2, tx.PurchasedItems[0].Qty)
	require.Equal(t, "1150001", tx.TotalPayment.String())
	require.Equal(t, "/uploads/transactions/t.png", tx.PaymentProof)
	require.Equal(t, 1, rec.checkouts[true])

	// stock is untouched until the order is paid
	require.Equal(t, 5, store.products[shoe].Stock)
}

func TestCheckout_Rejections(t *testing.T) {
	store := newMemStore()
	shoe := store.addProduct("Shoe", "450000", 1)
	uc := New(store, &fakeImages{})

	noProof := checkoutInput(ItemInput{ProductID: shoe, Qty: 1})
	noProof.PaymentProof = nil
	noName := checkoutInput(ItemInput{ProductID: shoe, Qty: 1})
	noName.CustomerName = " "

	cases := []struct {
		name string
		in   CheckoutInput
		err  error
	}{
		{"no items", checkoutInput(), ErrInvalidInput},
		{"zero qty", checkoutInput(ItemInput{ProductID: shoe, Qty: 0}), ErrInvalidInput},
		{"unknown product", checkoutInput(ItemInput{ProductID: uuid.NewString(), Qty: 1}), ErrProductMissing},
		{"malformed product", checkoutInput(ItemInput{ProductID: "abc", Qty: 1}), ErrProductMissing},
		{"over stock after merge", checkoutInput(ItemInput{ProductID: shoe, Qty: 1}, ItemInput{ProductID: shoe, Qty: 1}), ErrInsufficientStock},
		{"missing proof", noProof, ErrProofRequired},
		{"missing name", noName, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Checkout(context.Background(), tc.in)
			require.ErrorIs(t, err, tc.err)
		})
	}
	require.Empty(t, store.txs)
}

func TestCheckout_QuantityBounds(t *testing.T) {
	store := newMemStore()
	shoe := store.addProduct("Shoe", "450000", math.MaxInt32)
	uc := New(store, &fakeImages{})

	huge := math.MaxInt64/2 + 1
	cases := []struct {
		name  string
		items []ItemInput
	}{
		{"line above column range", []ItemInput{{ProductID: shoe, Qty: math.MaxInt32 + 1}}},
		{"merged lines wrap", []ItemInput{{ProductID: shoe, Qty: huge}, {ProductID: shoe, Qty: huge}}},
		{"merged lines above column range", []ItemInput{{ProductID: shoe, Qty: math.MaxInt32}, {ProductID: shoe, Qty: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Checkout(context.Background(), checkoutInput(tc.items...))
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	require.Empty(t, store.txs)

	tx, err := uc.Checkout(context.Background(), checkoutInput(
		ItemInput{ProductID: shoe, Qty: math.MaxInt32 - 1},
		ItemInput{ProductID: shoe, Qty: 1},
	))
	require.NoError(t, err)
	require.Equal(t, math.MaxInt32, tx.PurchasedItems[0].Qty)
	require.True(t, tx.TotalPayment.IsPositive())
}

type blockingNotifier struct {
	release chan struct{}
	sent    chan struct{}
}

func (n *blockingNotifier) Notify(context.Context, string, any) error {
	<-n.release
	close(n.sent)
	return nil
}

func TestWait_TracksPendingNotifications(t *testing.T) {
	store := newMemStore()
	shoe := store.addProduct("Shoe", "450000", 3)
	notifier := &blockingNotifier{release: make(chan struct{}), sent: make(chan struct{})}
	uc := New(store, &fakeImages{}, WithNotifier(notifier))

	require.NoError(t, uc.Wait(context.Background()))

	tx, err := uc.Checkout(context.Background(), checkoutInput(ItemInput{ProductID: shoe, Qty: 1}))
	require.NoError(t, err)
	_, err = uc.UpdateStatus(context.Background(), tx.ID, StatusPaid)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, uc.Wait(ctx), context.DeadlineExceeded)

	close(notifier.release)
	require.NoError(t, uc.Wait(context.Background()))
	select {
	case <-notifier.sent:
	default:
		t.Fatal("Wait returned before the notification was sent")
	}
}

func TestUpdateStatus_PaidDeductsStockAndNotifies(t *testing.T) {
	store := newMemStore()
	shoe := store.addProduct("Shoe", "450000", 3)
	notifier := &chanNotifier{events: make(chan StatusChanged, 1)}
	rec := &countRecorder{checkouts: map[bool]int{}, verified: map[string]int{}}
	uc := New(store, &fakeImages{}, WithNotifier(notifier), WithRecorder(rec))

	tx, err := uc.Checkout(context.Background(), checkoutInput(ItemInput{ProductID: shoe, Qty: 2}))
	require.NoError(t, err)

	out, err := uc.UpdateStatus(context.Background(), tx.ID, StatusPaid)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, out.Status)
	require.Equal(t, 1, store.products[shoe].Stock)
	require.Equal(t, 1, rec.verified[StatusPaid])

	select {
	case ev := <-notifier.events:
		require.Equal(t, tx.ID, ev.TransactionID)
		require.Equal(t, StatusPaid, ev.Status)
	case <-time.After(time.Second):
		t.Fatal("no status notification")
	}

	_, err = uc.UpdateStatus(context.Background(), tx.ID, StatusRejected)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_RejectedKeepsStock(t *testing.T) {
	store := newMemStore()
	shoe := store.addProduct("Shoe", "450000", 3)
	uc := New(store, &fakeImages{})

	tx, err := uc.Checkout(context.Background(), checkoutInput(ItemInput{ProductID: shoe, Qty: 2}))
	require.NoError(t, err)

	out, err := uc.UpdateStatus(context.Background(), tx.ID, StatusRejected)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, out.Status)
	require.Equal(t, 3, store.products[shoe].Stock)

	_, err = uc.UpdateStatus(context.Background(), tx.ID, StatusPaid)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_BadInput(t *testing.T) {
	uc := New(newMemStore(), &fakeImages{})

	_, err := uc.UpdateStatus(context.Background(), uuid.NewString(), StatusPending)
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = uc.UpdateStatus(context.Background(), "nope", StatusPaid)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_OnlyWhilePending(t *testing.T) {
	store := newMemStore()
	shoe := store.addProduct("Shoe", "450000", 3)
	images := &fakeImages{}
	uc := New(store, images)

	tx, err := uc.Checkout(context.Background(), checkoutInput(ItemInput{ProductID: shoe, Qty: 1}))
	require.NoError(t, err)

	addr := " Jl. Asia Afrika 8 "
	out, err := uc.Update(context.Background(), tx.ID, UpdateInput{CustomerAddress: &addr, PaymentProof: proof()})
	require.NoError(t, err)
	require.Equal(t, "Jl. Asia Afrika 8", out.CustomerAddress)
	require.Equal(t, "Budi", out.CustomerName)
	require.Equal(t, []string{tx.PaymentProof}, images.removed)

	blank := ""
	_, err = uc.Update(context.Background(), tx.ID, UpdateInput{CustomerName: &blank})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.UpdateStatus(context.Background(), tx.ID, StatusRejected)
	require.NoError(t, err)

	_, err = uc.Update(context.Background(), tx.ID, UpdateInput{CustomerAddress: &addr})
	require.ErrorIs(t, err, ErrNotEditable)
}

func TestList_StatusFilter(t *testing.T) {
	store := newMemStore()
	shoe := store.addProduct("Shoe", "450000", 10)
	uc := New(store, &fakeImages{})

	a, err := uc.Checkout(context.Background(), checkoutInput(ItemInput{ProductID: shoe, Qty: 1}))
	require.NoError(t, err)
	_, err = uc.Checkout(context.Background(), checkoutInput(ItemInput{ProductID: shoe, Qty: 1}))
	require.NoError(t, err)
	_, err = uc.UpdateStatus(context.Background(), a.ID, StatusPaid)
	require.NoError(t, err)

	paid := StatusPaid
	out, err := uc.List(context.Background(), ListQuery{Status: &paid})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, a.ID, out[0].ID)

	bogus := "shipped"
	_, err = uc.List(context.Background(), ListQuery{Status: &bogus})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDelete_RemovesProof(t *testing.T) {
	store := newMemStore()
	shoe := store.addProduct("Shoe", "450000", 10)
	images := &fakeImages{}
	uc := New(store, images)

	tx, err := uc.Checkout(context.Background(), checkoutInput(ItemInput{ProductID: shoe, Qty: 1}))
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), tx.ID))
	require.Equal(t, []string{tx.PaymentProof}, images.removed)
	require.ErrorIs(t, uc.Delete(context.Background(), tx.ID), ErrNotFound)
}
