package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRow struct {
	ID           string
	CategoryID   string
	CategoryName string
	Name         string
	Description  string
	Price        string
	Stock        int
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// productSelect expects the products relation aliased as p.
const productSelect = `
SELECT p.id::text, p.category_id::text, c.name, p.name, p.description,
       p.price::text, p.stock, p.image_url, p.created_at, p.updated_at
`

type ProductRepo struct {
	db *pgxpool.Pool
}

func NewProductRepo(db *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{db: db}
}

func scanProduct(row pgx.Row) (*ProductRow, error) {
	var p ProductRow
	if err := row.Scan(
		&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &p.Description,
		&p.Price, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) CategoryExists(ctx context.Context, categoryID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1::uuid)`, categoryID).Scan(&ok)
	return ok, err
}

func (r *ProductRepo) Create(ctx context.Context, categoryID, name, description, price string, stock int, imageURL string) (*ProductRow, error) {
	q := `
WITH p AS (
  INSERT INTO products (category_id, name, description, price, stock, image_url)
  VALUES ($1::uuid, $2, $3, $4::numeric, $5, $6)
  RETURNING *
)
` + productSelect + `
FROM p JOIN categories c ON c.id = p.category_id;
`
	return scanProduct(r.db.QueryRow(ctx, q, categoryID, name, description, price, stock, imageURL))
}

// List returns products newest first; categoryID nil means all.
func (r *ProductRepo) List(ctx context.Context, categoryID *string) ([]ProductRow, error) {
	q := productSelect + `
FROM products p
JOIN categories c ON c.id = p.category_id
WHERE ($1::uuid IS NULL OR p.category_id = $1::uuid)
ORDER BY p.created_at DESC;
`
	rows, err := r.db.Query(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ProductRow, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*ProductRow, error) {
	q := productSelect + `
FROM products p
JOIN categories c ON c.id = p.category_id
WHERE p.id = $1::uuid;
`
	return scanProduct(r.db.QueryRow(ctx, q, id))
}

func (r *ProductRepo) Update(
	ctx context.Context,
	id string,
	categoryID, name, description, price *string,
	stock *int,
	imageURL *string,
) (*ProductRow, error) {
	q := `
WITH p AS (
  UPDATE products
  SET
    category_id = COALESCE($2::uuid, category_id),
    name = COALESCE($3, name),
    description = COALESCE($4, description),
    price = COALESCE($5::numeric, price),
    stock = COALESCE($6::int, stock),
    image_url = COALESCE($7, image_url),
    updated_at = now()
  WHERE id = $1::uuid
  RETURNING *
)
` + productSelect + `
FROM p JOIN categories c ON c.id = p.category_id;
`
	return scanProduct(r.db.QueryRow(ctx, q, id, categoryID, name, description, price, stock, imageURL))
}

func (r *ProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1::uuid`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
