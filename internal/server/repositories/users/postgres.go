package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, email, username, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.UserName, user.PasswordHash).
		Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "u.email", email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "u.id", id)
}

func (r *PostgresRepository) getBy(ctx context.Context, column string, value string) (*models.User, error) {
	query := fmt.Sprintf(
		`SELECT u.id, u.email, u.username, u.password_hash, u.refresh_token,
		        u.created_at, u.updated_at,
		        v.code, v.expires_at, v.verified, v.verified_at
		 FROM users u
		 LEFT JOIN email_verifications v ON v.user_id = u.id
		 WHERE %s = $1
		 `, column)

	user := &models.User{}
	var (
		refreshToken sql.NullString
		code         sql.NullInt64
		expiresAt    sql.NullTime
		verified     sql.NullBool
		verifiedAt   sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Email, &user.UserName, &user.PasswordHash, &refreshToken,
		&user.CreatedAt, &user.UpdatedAt,
		&code, &expiresAt, &verified, &verifiedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if refreshToken.Valid {
		user.RefreshToken = &refreshToken.String
	}

	// verified is non-NULL exactly when the joined sub-record exists.
	if verified.Valid {
		v := &models.EmailVerification{UserID: user.ID, Verified: verified.Bool}
		if code.Valid {
			v.Code = &code.Int64
		}
		if expiresAt.Valid {
			v.ExpiresAt = &expiresAt.Time
		}
		if verifiedAt.Valid {
			v.VerifiedAt = &verifiedAt.Time
		}
		user.Verification = v
	}

	return user, nil
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, userID string, token string) error {

	query :=
		`UPDATE users SET refresh_token = $2, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireRowAffected(res)
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, userID string) error {

	query :=
		`UPDATE users SET refresh_token = NULL, updated_at = now()
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
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
