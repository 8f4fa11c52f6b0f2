package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// reserveLease is how long an unfinished reservation blocks its key. A row
// left behind by a crashed process can be claimed again after that.
const reserveLease = "5 minutes"

type IdempotencyRepo struct {
	db *pgxpool.Pool
}

func NewIdempotencyRepo(db *pgxpool.Pool) *IdempotencyRepo {
	return &IdempotencyRepo{db: db}
}

// Reserve inserts an in-flight row (status 0) for key. When the key exists the
// stored response is returned instead, with status 0 if it is still in flight.
func (r *IdempotencyRepo) Reserve(ctx context.Context, key string) (reserved bool, status int, body []byte, err error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO idempotency_keys (key_id, response_status, response_body)
		 VALUES ($1, 0, ''::bytea)
		 ON CONFLICT (key_id) DO UPDATE SET created_at = now()
		 WHERE idempotency_keys.response_status = 0
		   AND idempotency_keys.created_at < now() - interval '`+reserveLease+`'`,
		key,
	)
	if err != nil {
		return false, 0, nil, err
	}
	if tag.RowsAffected() == 1 {
		return true, 0, nil, nil
	}

	err = r.db.QueryRow(ctx,
		`SELECT response_status, response_body FROM idempotency_keys WHERE key_id = $1`,
		key,
	).Scan(&status, &body)
	if err != nil {
		// released between the insert and the read; report it as in flight
		if isNoRows(err) {
			return false, 0, nil, nil
		}
		return false, 0, nil, err
	}
	return false, status, body, nil
}

// Complete records the response for a reserved key. The first response wins.
func (r *IdempotencyRepo) Complete(ctx context.Context, key string, status int, body []byte) error {
	_, err := r.db.Exec(ctx,
		`UPDATE idempotency_keys
		 SET response_status = $2, response_body = $3
		 WHERE key_id = $1 AND response_status = 0`,
		key, status, body,
	)
	return err
}

// Release drops an unfinished reservation so the key can be retried.
func (r *IdempotencyRepo) Release(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE key_id = $1 AND response_status = 0`,
		key,
	)
	return err
}
