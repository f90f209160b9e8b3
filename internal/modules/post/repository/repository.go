package repository

import (
	"context"

	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/domain"
)

// Repository defines read access to channel posts
type Repository interface {
	// GetPosts returns one page of posts in the order the upstream declares
	GetPosts(ctx context.Context, channelID string, page, perPage int) ([]*domain.NewsPost, error)
}
