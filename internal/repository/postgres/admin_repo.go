package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	authuc "github.com/Glenferdinza/sporton/internal/usecase/auth"
)

type AdminRow struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
}

type AdminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepo(db *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (*AdminRow, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id::text, email, password_hash, is_active
		FROM admins
		WHERE email = lower($1)
	`, email)

	var a AdminRow
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsActive); err != nil {
		return nil, err
	}
	return &a, nil
}

// Upsert creates the admin or resets its password and reactivates it.
func (r *AdminRepo) Upsert(ctx context.Context, email, passwordHash string) (*AdminRow, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO admins (email, password_hash)
		VALUES (lower($1), $2)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    is_active = true,
		    updated_at = now()
		RETURNING id::text, email, password_hash, is_active
	`, strings.TrimSpace(email), passwordHash)

	var a AdminRow
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsActive); err != nil {
		return nil, err
	}
	return &a, nil
}

// AdminFinderAdapter exposes AdminRepo to the login usecase.
type AdminFinderAdapter struct {
	repo *AdminRepo
}

func NewAdminFinderAdapter(repo *AdminRepo) *AdminFinderAdapter {
	return &AdminFinderAdapter{repo: repo}
}

func (a *AdminFinderAdapter) FindByEmail(ctx context.Context, email string) (*authuc.Admin, error) {
	r, err := a.repo.FindByEmail(ctx, email)
	if err != nil {
		if isNoRows(err) {
			return nil, authuc.ErrAdminNotFound
		}
		return nil, err
	}
	return &authuc.Admin{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		IsActive:     r.IsActive,
	}, nil
}

var _ authuc.AdminFinder = (*AdminFinderAdapter)(nil)
