// Package users provides a PostgreSQL-backed repository for account records,
// including the reset-token lifecycle and the token-version revocation
// counter checked on every protected request.
package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stream254/backend/internal/common"
	"github.com/stream254/backend/internal/dbx"
	"github.com/stream254/backend/internal/server/models"
)

const userColumns = `id, username, email, password_hash, avatar, sports, interests,
		location, phone_number, terms, token_version, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. A duplicate email yields common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, token_version, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.TokenVersion, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// UpdateProfile applies a partial patch in a single UPDATE so concurrent
// profile edits cannot interleave on the same row.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, patch *models.UserPatch) (*models.User, error) {

	sports, err := jsonOrNil(patch.Sports)
	if err != nil {
		return nil, err
	}
	interests, err := jsonOrNil(patch.Interests)
	if err != nil {
		return nil, err
	}

	query :=
		`UPDATE users SET
			sports       = COALESCE($2, sports),
			interests    = COALESCE($3, interests),
			location     = COALESCE($4, location),
			phone_number = COALESCE($5, phone_number),
			terms        = COALESCE($6, terms),
			avatar       = COALESCE($7, avatar),
			updated_at   = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, id,
		sports, interests, patch.Location, patch.PhoneNumber, patch.Terms, patch.Avatar)

	return r.scanUser(row)
}

// IncrementTokenVersion bumps the user's revocation counter, invalidating
// every bearer token issued before the call.
func (r *PostgresRepository) IncrementTokenVersion(ctx context.Context, id string) (int64, error) {
	query :=
		`UPDATE users SET token_version = token_version + 1
		 WHERE id = $1
		 RETURNING token_version
		 `

	var version int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&version)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return version, nil
}

// SetResetToken records a pending password-reset token with its expiry.
func (r *PostgresRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	query :=
		`UPDATE users SET reset_token = $2, reset_token_expires = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id
		 `

	var returned string
	err := r.db.QueryRowContext(ctx, query, id, token, expires).Scan(&returned)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// ConsumeResetToken stores the new password hash and clears the reset token
// in one statement, guarded by the token match and its expiry. An absent,
// already-consumed or expired token yields common.ErrInvalidToken.
func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string) error {
	query :=
		`UPDATE users SET
			password_hash = $2,
			reset_token = NULL,
			reset_token_expires = NULL,
			updated_at = now()
		 WHERE reset_token = $1 AND reset_token_expires > now()
		 RETURNING id
		 `

	var id string
	err := r.db.QueryRowContext(ctx, query, token, passwordHash).Scan(&id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrInvalidToken
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var avatar, location, phone sql.NullString
	var sports, interests []byte

	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&avatar, &sports, &interests, &location, &phone, &user.Terms,
		&user.TokenVersion, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Avatar = avatar.String
	user.Location = location.String
	user.PhoneNumber = phone.String

	if err := json.Unmarshal(sports, &user.Sports); err != nil {
		return nil, fmt.Errorf("decoding sports: %w", err)
	}
	if err := json.Unmarshal(interests, &user.Interests); err != nil {
		return nil, fmt.Errorf("decoding interests: %w", err)
	}

	return user, nil
}

// jsonOrNil serializes a string set for a jsonb column, keeping nil slices
// as SQL NULL so COALESCE leaves the stored value alone.
func jsonOrNil(values []string) (any, error) {
	if values == nil {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encoding value set: %w", err)
	}
	return b, nil
}
