package verifications

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SetPending(ctx context.Context, userID string, code int64, expiresAt time.Time) error {

	query :=
		`INSERT INTO email_verifications (user_id, code, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
		 WHERE email_verifications.verified = FALSE
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, code, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, userID string, at time.Time) error {

	query :=
		`UPDATE email_verifications
		 SET verified = TRUE, verified_at = $2, code = NULL, expires_at = NULL
		 WHERE user_id = $1 AND verified = FALSE
		 `

	res, err := r.db.ExecContext(ctx, query, userID, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
