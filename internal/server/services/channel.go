package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stream254/backend/internal/common"
	"github.com/stream254/backend/internal/dbx"
	"github.com/stream254/backend/internal/server/models"
	"github.com/stream254/backend/internal/server/repositories/repomanager"
)

// ChannelService provides catalog CRUD and the favorites relation.
type ChannelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewChannelService(db *sql.DB, m repomanager.RepositoryManager) *ChannelService {
	return &ChannelService{db: db, repomanager: m}
}

// Create adds a channel to the catalog. Duplicate name or channel number
// yields common.ErrConflict.
func (s *ChannelService) Create(ctx context.Context, name string, number int64, category []string, logoKey string) (*models.Channel, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if number <= 0 {
		return nil, fmt.Errorf("%w: channel_number must be positive", common.ErrValidation)
	}
	if category == nil {
		category = []string{}
	}

	channel, err := s.repomanager.Channels(s.db).Create(ctx, &models.Channel{
		Name:          name,
		ChannelNumber: number,
		Category:      category,
		Logo:          logoKey,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, common.ErrInternal
	}
	return channel, nil
}

func (s *ChannelService) Get(ctx context.Context, id string) (*models.Channel, error) {
	channel, err := s.repomanager.Channels(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return channel, nil
}

func (s *ChannelService) List(ctx context.Context) ([]*models.Channel, error) {
	channels, err := s.repomanager.Channels(s.db).List(ctx)
	if err != nil {
		return nil, common.ErrInternal
	}
	return channels, nil
}

// Update applies a partial patch to a channel record.
func (s *ChannelService) Update(ctx context.Context, id string, patch *models.ChannelPatch) (*models.Channel, error) {
	channel, err := s.repomanager.Channels(s.db).Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return nil, common.ErrNotFound
		case errors.Is(err, common.ErrConflict):
			return nil, common.ErrConflict
		}
		return nil, common.ErrInternal
	}
	return channel, nil
}

// Delete removes a channel. Favorites referencing it are not touched; the
// listing join drops them.
func (s *ChannelService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Channels(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}
	return nil
}

// AddFavorite appends channelID to the user's favorites. A channel already
// present yields common.ErrConflict rather than silent success; unknown
// user or channel yields common.ErrNotFound. The existence checks and the
// insert run in one transaction so a concurrent channel delete cannot slip
// between them.
func (s *ChannelService) AddFavorite(ctx context.Context, userID, channelID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).GetByID(ctx, userID); err != nil {
			return err
		}
		if _, err := s.repomanager.Channels(tx).GetByID(ctx, channelID); err != nil {
			return err
		}
		return s.repomanager.Favorites(tx).Add(ctx, userID, channelID)
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConflict):
			return common.ErrConflict
		case errors.Is(err, common.ErrNotFound):
			return common.ErrNotFound
		}
		return common.ErrInternal
	}
	return nil
}

// ListFavorites resolves the user's favorites to channel records in
// insertion order.
func (s *ChannelService) ListFavorites(ctx context.Context, userID string) ([]*models.Channel, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	channels, err := s.repomanager.Favorites(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return channels, nil
}
