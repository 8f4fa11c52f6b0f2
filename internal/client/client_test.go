package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	bankuc "github.com/Glenferdinza/sporton/internal/usecase/bank"
	trxuc "github.com/Glenferdinza/sporton/internal/usecase/transaction"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_StoresTokenAndSendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "admin@sporton.id", body["email"])
			writeJSON(w, 200, map[string]any{"accessToken": "tok-1", "expiresIn": 3600})
		case "/api/banks":
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			writeJSON(w, 201, map[string]any{"_id": "b1", "bankName": "BCA"})
		default:
			http.NotFound(w, r)
		}
	})

	res, err := c.Login(context.Background(), "admin@sporton.id", "secret123")
	require.NoError(t, err)
	require.Equal(t, "tok-1", res.AccessToken)
	require.Equal(t, "tok-1", c.Token)

	b, err := c.CreateBank(context.Background(), bankuc.CreateInput{BankName: "BCA", AccountNumber: "1", AccountName: "S"})
	require.NoError(t, err)
	require.Equal(t, "b1", b.ID)
}

func TestDo_DecodesErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "category is in use"})
	})

	err := c.DeleteCategory(context.Background(), "c1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "category is in use", apiErr.Message)
	require.True(t, IsStatus(err, http.StatusConflict))
}

func TestDo_NonJSONErrorFallsBackToStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := c.ListBanks(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestCheckout_SendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/transactions/checkout", r.URL.Path)
		require.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		require.Equal(t, "Budi", r.FormValue("customerName"))
		var items []trxuc.ItemInput
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("purchasedItems")), &items))
		require.Equal(t, []trxuc.ItemInput{{ProductID: "p1", Qty: 2}}, items)

		f, hdr, err := r.FormFile("paymentProof")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "proof.png", hdr.Filename)
		raw, _ := io.ReadAll(f)
		require.Equal(t, "png-bytes", string(raw))

		writeJSON(w, 201, map[string]any{"_id": "t1", "status": "pending", "totalPayment": "900000"})
	})

	tx, err := c.Checkout(context.Background(), CheckoutInput{
		CustomerName:    "Budi",
		CustomerContact: "0812",
		CustomerAddress: "Jl. Merdeka 1",
		Items:           []trxuc.ItemInput{{ProductID: "p1", Qty: 2}},
		PaymentProof:    &File{Name: "proof.png", Content: strings.NewReader("png-bytes")},
		IdempotencyKey:  "key-1",
	})
	require.NoError(t, err)
	require.Equal(t, "t1", tx.ID)
	require.Equal(t, "900000", tx.TotalPayment.String())
}

func TestListFilters_AreQueryParams(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.RequestURI())
		mu.Unlock()
		writeJSON(w, 200, []any{})
	})
	ctx := context.Background()

	_, err := c.ListProducts(ctx, "cat-1")
	require.NoError(t, err)
	_, err = c.ListTransactions(ctx, "pending")
	require.NoError(t, err)
	_, err = c.ListTransactions(ctx, "")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"/api/products?category=cat-1",
		"/api/transactions?status=pending",
		"/api/transactions",
	}, seen)
}

func TestUpdateTransactionStatus_SendsStatusJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/transactions/t1/status", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, 200, map[string]any{"_id": "t1", "status": body["status"]})
	})

	tx, err := c.UpdateTransactionStatus(context.Background(), "t1", trxuc.StatusPaid)
	require.NoError(t, err)
	require.Equal(t, trxuc.StatusPaid, tx.Status)
}

func TestMutations_FailFastWhileBusy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, 200, []any{})
			return
		}
		close(entered)
		<-release
		writeJSON(w, 200, map[string]string{"message": "bank deleted"})
	})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.DeleteBank(ctx, "b1") }()
	<-entered

	require.ErrorIs(t, c.DeleteBank(ctx, "b2"), ErrBusy)
	_, err := c.CreateBank(ctx, bankuc.CreateInput{BankName: "BNI"})
	require.ErrorIs(t, err, ErrBusy)

	// reads are not guarded
	_, err = c.ListBanks(ctx)
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)
}
