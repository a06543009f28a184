package repomanager

import (
	"context"
	"database/sql"

	"github.com/stream254/backend/internal/dbx"
	"github.com/stream254/backend/internal/server/repositories/channels"
	"github.com/stream254/backend/internal/server/repositories/favorites"
	"github.com/stream254/backend/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Channels(db dbx.DBTX) channels.Repository
	Favorites(db dbx.DBTX) favorites.Repository
}
