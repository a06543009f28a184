// Package channels provides a PostgreSQL-backed repository for the channel
// catalog. Name and channel_number uniqueness is enforced by the store and
// surfaced as common.ErrConflict.
package channels

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stream254/backend/internal/common"
	"github.com/stream254/backend/internal/dbx"
	"github.com/stream254/backend/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, channel *models.Channel) (*models.Channel, error) {

	category, err := json.Marshal(channel.Category)
	if err != nil {
		return nil, fmt.Errorf("encoding category: %w", err)
	}

	query :=
		`INSERT INTO channels (name, channel_number, category, logo)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		channel.Name, channel.ChannelNumber, category, nullIfEmpty(channel.Logo)).
		Scan(&channel.ID, &channel.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return channel, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	query :=
		`SELECT id, name, channel_number, category, logo, created_at
		 FROM channels
		 WHERE id = $1
		 `
	return scanChannel(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Channel, error) {
	query :=
		`SELECT id, name, channel_number, category, logo, created_at
		 FROM channels
		 ORDER BY channel_number
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collectChannels(rows)
}

// Update applies a partial patch; absent fields keep their stored values.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch *models.ChannelPatch) (*models.Channel, error) {

	var category any
	if patch.Category != nil {
		b, err := json.Marshal(patch.Category)
		if err != nil {
			return nil, fmt.Errorf("encoding category: %w", err)
		}
		category = b
	}

	query :=
		`UPDATE channels SET
			name           = COALESCE($2, name),
			channel_number = COALESCE($3, channel_number),
			category       = COALESCE($4, category),
			logo           = COALESCE($5, logo)
		 WHERE id = $1
		 RETURNING id, name, channel_number, category, logo, created_at
		 `

	row := r.db.QueryRowContext(ctx, query, id,
		patch.Name, patch.ChannelNumber, category, patch.Logo)

	channel, err := scanChannel(row)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	return channel, nil
}

// Delete removes a channel. Favorites referencing it are left in place and
// filtered out when favorites are listed.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM channels WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

// nullIfEmpty maps an unset logo to SQL NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (*models.Channel, error) {
	channel := &models.Channel{}
	var logo sql.NullString
	var category []byte

	err := row.Scan(&channel.ID, &channel.Name, &channel.ChannelNumber,
		&category, &logo, &channel.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	channel.Logo = logo.String
	if err := json.Unmarshal(category, &channel.Category); err != nil {
		return nil, fmt.Errorf("decoding category: %w", err)
	}

	return channel, nil
}

func collectChannels(rows *sql.Rows) ([]*models.Channel, error) {
	result := []*models.Channel{}
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
