package channels

import (
	"context"

	"github.com/stream254/backend/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, channel *models.Channel) (*models.Channel, error)
	GetByID(ctx context.Context, id string) (*models.Channel, error)
	List(ctx context.Context) ([]*models.Channel, error)
	Update(ctx context.Context, id string, patch *models.ChannelPatch) (*models.Channel, error)
	Delete(ctx context.Context, id string) error
}
