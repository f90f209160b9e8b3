package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/domain"
	postRepo "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/repository"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// DefaultLimit is the page size used when the caller gives none
const DefaultLimit = 50

// ChannelResolver yields the id of the news channel
type ChannelResolver interface {
	ResolveChannelID(ctx context.Context) (string, error)
}

// Service fetches the news channel posts
type Service struct {
	channels ChannelResolver
	repo     postRepo.Repository
}

// New creates a new post service
func New(channels ChannelResolver, repo postRepo.Repository) *Service {
	return &Service{
		channels: channels,
		repo:     repo,
	}
}

// GetNewsPosts returns up to limit ordinary posts of the news channel,
// newest first. Only the first upstream page is read.
func (s *Service) GetNewsPosts(ctx context.Context, limit int) ([]*domain.NewsPost, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	channelID, err := s.channels.ResolveChannelID(ctx)
	if err != nil {
		return nil, oops.
			In("post").
			With("limit", limit).
			Wrap(fmt.Errorf("%w: %w", errors.ErrPostFetch, err))
	}

	posts, err := s.repo.GetPosts(ctx, channelID, 0, limit)
	if err != nil {
		return nil, oops.
			In("post").
			With("channel_id", channelID, "limit", limit).
			Wrapf(fmt.Errorf("%w: %w", errors.ErrPostFetch, err), "failed to fetch posts")
	}

	news := lo.Filter(posts, func(p *domain.NewsPost, _ int) bool {
		return p.IsOrdinary()
	})
	sort.SliceStable(news, func(i, j int) bool {
		return news[i].CreateAt > news[j].CreateAt
	})
	if len(news) > limit {
		news = news[:limit]
	}

	return news, nil
}
