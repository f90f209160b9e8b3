package repository

import (
	"context"

	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/domain"
)

// Repository defines read access to channel metadata
type Repository interface {
	GetChannelByName(ctx context.Context, teamID, name string) (*domain.Channel, error)
	GetChannel(ctx context.Context, channelID string) (*domain.Channel, error)
}
