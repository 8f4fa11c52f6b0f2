package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Glenferdinza/sporton/internal/repository/postgres/testutil"
	bankuc "github.com/Glenferdinza/sporton/internal/usecase/bank"
	categoryuc "github.com/Glenferdinza/sporton/internal/usecase/category"
	productuc "github.com/Glenferdinza/sporton/internal/usecase/product"
	trxuc "github.com/Glenferdinza/sporton/internal/usecase/transaction"
)

func strp(s string) *string { return &s }

func TestBankStore_CRUD(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)
	store := NewBankStoreAdapter(NewBankRepo(pool))
	ctx := context.Background()

	b, err := store.Create(ctx, bankuc.CreateInput{BankName: "BCA", AccountNumber: "1234567890", AccountName: "SportOn"})
	require.NoError(t, err)
	require.NotEmpty(t, b.ID)

	out, err := store.Update(ctx, b.ID, bankuc.UpdateInput{AccountName: strp("SportOn Store")})
	require.NoError(t, err)
	require.Equal(t, "BCA", out.BankName)
	require.Equal(t, "SportOn Store", out.AccountName)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, b.ID))
	require.ErrorIs(t, store.Delete(ctx, b.ID), bankuc.ErrNotFound)

	_, err = store.GetByID(ctx, b.ID)
	require.ErrorIs(t, err, bankuc.ErrNotFound)
}

func TestCategoryStore_DeleteInUse(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)
	store := NewCategoryStoreAdapter(NewCategoryRepo(pool))
	ctx := context.Background()

	c, err := store.Create(ctx, "Running", "Shoes and apparel", "/uploads/categories/a.png")
	require.NoError(t, err)
	testutil.MustInsertProduct(t, pool, c.ID, "Road Runner", "450000", 3)

	require.ErrorIs(t, store.Delete(ctx, c.ID), categoryuc.ErrInUse)
}

func TestProductStore_ListFilterAndUpdate(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)
	store := NewProductStoreAdapter(NewProductRepo(pool))
	ctx := context.Background()

	running := testutil.MustInsertCategory(t, pool, "Running")
	tennis := testutil.MustInsertCategory(t, pool, "Tennis")

	ok, err := store.CategoryExists(ctx, running)
	require.NoError(t, err)
	require.True(t, ok)

	p, err := store.Create(ctx, productuc.NewProduct{
		Name: "Road Runner", Price: decimal.RequireFromString("450000"), Stock: 4, CategoryID: running,
	})
	require.NoError(t, err)
	require.Equal(t, "Running", p.Category.Name)
	require.True(t, p.Price.Equal(decimal.RequireFromString("450000")))

	_, err = store.Create(ctx, productuc.NewProduct{
		Name: "Pro Racket", Price: decimal.RequireFromString("1250000.50"), Stock: 2, CategoryID: tennis,
	})
	require.NoError(t, err)

	only, err := store.List(ctx, productuc.ListQuery{CategoryID: &tennis})
	require.NoError(t, err)
	require.Len(t, only, 1)
	require.Equal(t, "Pro Racket", only[0].Name)

	stock := 9
	out, err := store.Update(ctx, p.ID, productuc.Fields{Stock: &stock, CategoryID: &tennis})
	require.NoError(t, err)
	require.Equal(t, 9, out.Stock)
	require.Equal(t, "Tennis", out.Category.Name)
	require.Equal(t, "Road Runner", out.Name)

	_, err = store.Update(ctx, uuid.NewString(), productuc.Fields{Stock: &stock})
	require.ErrorIs(t, err, productuc.ErrNotFound)
}

func newOrder(t *testing.T, store *TransactionStoreAdapter, productID string, qty int) *trxuc.Transaction {
	t.Helper()
	price := decimal.RequireFromString("450000")
	tx, err := store.Create(context.Background(), trxuc.NewTransaction{
		CustomerName:    "Budi",
		CustomerContact: "08123456789",
		CustomerAddress: "Jl. Merdeka 1",
		Items:           []trxuc.NewItem{{ProductID: productID, Qty: qty, UnitPrice: price}},
		TotalPayment:    price.Mul(decimal.NewFromInt(int64(qty))),
		PaymentProof:    "/uploads/transactions/p.png",
	})
	require.NoError(t, err)
	return tx
}

func TestTransactionStore_PaidDeductsStock(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)
	store := NewTransactionStoreAdapter(NewTransactionRepo(pool))
	ctx := context.Background()

	cat := testutil.MustInsertCategory(t, pool, "Running")
	productID := testutil.MustInsertProduct(t, pool, cat, "Road Runner", "450000", 5)

	tx := newOrder(t, store, productID, 2)
	require.Equal(t, trxuc.StatusPending, tx.Status)
	require.Len(t, tx.PurchasedItems, 1)
	require.Equal(t, "Road Runner", tx.PurchasedItems[0].Product.Name)
	require.Equal(t, "900000", tx.TotalPayment.String())
	require.Equal(t, 5, testutil.MustStock(t, pool, productID))

	out, err := store.UpdateStatus(ctx, tx.ID, trxuc.StatusPaid)
	require.NoError(t, err)
	require.Equal(t, trxuc.StatusPaid, out.Status)
	require.Equal(t, 3, testutil.MustStock(t, pool, productID))

	_, err = store.UpdateStatus(ctx, tx.ID, trxuc.StatusRejected)
	require.ErrorIs(t, err, trxuc.ErrInvalidTransition)

	_, err = store.Update(ctx, tx.ID, trxuc.Fields{CustomerName: strp("Andi")})
	require.ErrorIs(t, err, trxuc.ErrNotEditable)
}

func TestTransactionStore_InsufficientStockRollsBack(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)
	store := NewTransactionStoreAdapter(NewTransactionRepo(pool))
	ctx := context.Background()

	cat := testutil.MustInsertCategory(t, pool, "Running")
	productID := testutil.MustInsertProduct(t, pool, cat, "Road Runner", "450000", 3)

	first := newOrder(t, store, productID, 2)
	second := newOrder(t, store, productID, 2)

	_, err := store.UpdateStatus(ctx, first.ID, trxuc.StatusPaid)
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, second.ID, trxuc.StatusPaid)
	require.ErrorIs(t, err, trxuc.ErrInsufficientStock)

	got, err := store.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, trxuc.StatusPending, got.Status)
	require.Equal(t, 1, testutil.MustStock(t, pool, productID))

	out, err := store.UpdateStatus(ctx, second.ID, trxuc.StatusRejected)
	require.NoError(t, err)
	require.Equal(t, trxuc.StatusRejected, out.Status)
	require.Equal(t, 1, testutil.MustStock(t, pool, productID))
}

func TestTransactionStore_ConcurrentVerificationIsSerialised(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)
	store := NewTransactionStoreAdapter(NewTransactionRepo(pool))

	cat := testutil.MustInsertCategory(t, pool, "Running")
	productID := testutil.MustInsertProduct(t, pool, cat, "Road Runner", "450000", 10)
	tx := newOrder(t, store, productID, 1)

	const workers = 5
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.UpdateStatus(context.Background(), tx.ID, trxuc.StatusPaid); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, 9, testutil.MustStock(t, pool, productID))
}

func TestTransactionStore_ListAndDelete(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)
	store := NewTransactionStoreAdapter(NewTransactionRepo(pool))
	ctx := context.Background()

	cat := testutil.MustInsertCategory(t, pool, "Running")
	productID := testutil.MustInsertProduct(t, pool, cat, "Road Runner", "450000", 10)
	a := newOrder(t, store, productID, 1)
	newOrder(t, store, productID, 1)

	_, err := store.UpdateStatus(ctx, a.ID, trxuc.StatusRejected)
	require.NoError(t, err)

	rejected := trxuc.StatusRejected
	list, err := store.List(ctx, trxuc.ListQuery{Status: &rejected})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, a.ID, list[0].ID)
	require.Len(t, list[0].PurchasedItems, 1)

	all, err := store.List(ctx, trxuc.ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	// product is referenced by orders now
	require.ErrorIs(t, NewProductStoreAdapter(NewProductRepo(pool)).Delete(ctx, productID), productuc.ErrInUse)

	require.NoError(t, store.Delete(ctx, a.ID))
	require.ErrorIs(t, store.Delete(ctx, a.ID), trxuc.ErrNotFound)
}

func TestIdempotencyRepo_ReserveCompleteRelease(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)
	repo := NewIdempotencyRepo(pool)
	ctx := context.Background()

	reserved, _, _, err := repo.Reserve(ctx, "k")
	require.NoError(t, err)
	require.True(t, reserved)

	// second caller sees the key in flight
	reserved, status, _, err := repo.Reserve(ctx, "k")
	require.NoError(t, err)
	require.False(t, reserved)
	require.Zero(t, status)

	require.NoError(t, repo.Complete(ctx, "k", 201, []byte(`{"n":1}`)))
	require.NoError(t, repo.Complete(ctx, "k", 201, []byte(`{"n":2}`)))
	require.NoError(t, repo.Release(ctx, "k"))

	reserved, status, body, err := repo.Reserve(ctx, "k")
	require.NoError(t, err)
	require.False(t, reserved)
	require.Equal(t, 201, status)
	require.JSONEq(t, `{"n":1}`, string(body))

	// a released key can be claimed again
	reserved, _, _, err = repo.Reserve(ctx, "k2")
	require.NoError(t, err)
	require.True(t, reserved)
	require.NoError(t, repo.Release(ctx, "k2"))
	reserved, _, _, err = repo.Reserve(ctx, "k2")
	require.NoError(t, err)
	require.True(t, reserved)
}

func TestIdempotencyRepo_ConcurrentReserveHasOneWinner(t *testing.T) {
	pool := testutil.MustOpenDB(t)
	testutil.TruncateAll(t, pool)
	repo := NewIdempotencyRepo(pool)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reserved, _, _, err := repo.Reserve(ctx, "race")
			if err == nil && reserved {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}
