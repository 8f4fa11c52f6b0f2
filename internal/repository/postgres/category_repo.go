package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryRow struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const categoryColumns = `id::text, name, description, image_url, created_at, updated_at`

type CategoryRepo struct {
	db *pgxpool.Pool
}

func NewCategoryRepo(db *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func scanCategory(row pgx.Row) (*CategoryRow, error) {
	var c CategoryRow
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, name, description, imageURL string) (*CategoryRow, error) {
	q := `
INSERT INTO categories (name, description, image_url)
VALUES ($1, $2, $3)
RETURNING ` + categoryColumns + `;
`
	return scanCategory(r.db.QueryRow(ctx, q, name, description, imageURL))
}

func (r *CategoryRepo) List(ctx context.Context) ([]CategoryRow, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories ORDER BY created_at DESC;`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CategoryRow, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*CategoryRow, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1::uuid;`
	return scanCategory(r.db.QueryRow(ctx, q, id))
}

func (r *CategoryRepo) Update(ctx context.Context, id string, name, description, imageURL *string) (*CategoryRow, error) {
	q := `
UPDATE categories
SET
  name = COALESCE($2, name),
  description = COALESCE($3, description),
  image_url = COALESCE($4, image_url),
  updated_at = now()
WHERE id = $1::uuid
RETURNING ` + categoryColumns + `;
`
	return scanCategory(r.db.QueryRow(ctx, q, id, name, description, imageURL))
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1::uuid`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
