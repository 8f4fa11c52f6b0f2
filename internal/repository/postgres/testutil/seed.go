package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func MustInsertCategory(t *testing.T, db *pgxpool.Pool, name string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id::text
	`, name).Scan(&id)

	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func MustInsertProduct(t *testing.T, db *pgxpool.Pool, categoryID, name, price string, stock int) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO products (category_id, name, price, stock)
		VALUES ($1::uuid, $2, $3::numeric, $4)
		RETURNING id::text
	`, categoryID, name, price, stock).Scan(&id)

	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func MustStock(t *testing.T, db *pgxpool.Pool, productID string) int {
	t.Helper()

	var stock int
	err := db.QueryRow(context.Background(),
		`SELECT stock FROM products WHERE id = $1::uuid`, productID,
	).Scan(&stock)
	require.NoError(t, err)
	return stock
}
