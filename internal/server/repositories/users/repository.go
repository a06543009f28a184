package users

import (
	"context"
	"time"

	"github.com/stream254/backend/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, patch *models.UserPatch) (*models.User, error)
	IncrementTokenVersion(ctx context.Context, id string) (int64, error)
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, token, passwordHash string) error
}
