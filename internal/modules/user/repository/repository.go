package repository

import (
	"context"

	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/user/domain"
)

// Repository defines read access to user identities
type Repository interface {
	GetMe(ctx context.Context) (*domain.User, error)
}
