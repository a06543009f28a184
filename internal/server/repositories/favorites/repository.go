package favorites

import (
	"context"

	"github.com/stream254/backend/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, userID, channelID string) error
	ListByUser(ctx context.Context, userID string) ([]*models.Channel, error)
}
