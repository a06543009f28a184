// Package favorites provides a PostgreSQL-backed repository for the
// user-to-channel favorites relation. The pair is unique and insertion
// order is preserved through a per-user position counter.
package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
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

// Add appends channelID to the user's favorites. The position subquery and
// the primary key make the whole append a single atomic statement, so two
// concurrent adds for the same user cannot produce duplicates or equal
// positions for the same channel. A duplicate pair yields common.ErrConflict,
// a reference to a missing user common.ErrNotFound.
func (r *PostgresRepository) Add(ctx context.Context, userID, channelID string) error {
	query :=
		`INSERT INTO favorites (user_id, channel_id, position)
		 SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
		 FROM favorites
		 WHERE user_id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, channelID); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// ListByUser resolves the user's favorite channel IDs to channel records in
// insertion order. The inner join silently drops favorites whose channel has
// been deleted since.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Channel, error) {
	query :=
		`SELECT c.id, c.name, c.channel_number, c.category, c.logo, c.created_at
		 FROM favorites f
		 JOIN channels c ON c.id = f.channel_id
		 WHERE f.user_id = $1
		 ORDER BY f.position
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Channel{}
	for rows.Next() {
		channel := &models.Channel{}
		var logo sql.NullString
		var category []byte

		if err := rows.Scan(&channel.ID, &channel.Name, &channel.ChannelNumber,
			&category, &logo, &channel.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		channel.Logo = logo.String
		if err := json.Unmarshal(category, &channel.Category); err != nil {
			return nil, fmt.Errorf("decoding category: %w", err)
		}
		result = append(result, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
