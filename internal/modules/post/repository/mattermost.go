package repository

import (
	"context"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/domain"
	"github.com/samber/lo"
)

// Props set by the Mattermost server for its own bookkeeping
var internalProps = []string{"mentions", "channel_mentions"}

// API is the part of the Mattermost transport the repository needs
type API interface {
	ChannelPosts(ctx context.Context, channelID string, page, perPage int) (*model.PostList, error)
}

// MattermostStorage implements Repository on top of the Mattermost REST API
type MattermostStorage struct {
	api API
}

// NewMattermostStorage creates a Mattermost-backed post repository
func NewMattermostStorage(api API) Repository {
	return &MattermostStorage{api: api}
}

func (s *MattermostStorage) GetPosts(ctx context.Context, channelID string, page, perPage int) ([]*domain.NewsPost, error) {
	list, err := s.api.ChannelPosts(ctx, channelID, page, perPage)
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.NewsPost, 0, len(list.Order))
	for _, id := range list.Order {
		post, ok := list.Posts[id]
		if !ok || post == nil {
			continue
		}
		posts = append(posts, toDomain(post))
	}

	return posts, nil
}

func toDomain(post *model.Post) *domain.NewsPost {
	fileIDs := []string(post.FileIds)
	if fileIDs == nil {
		fileIDs = []string{}
	}

	reactionCount := 0
	if post.Metadata != nil {
		reactionCount = len(post.Metadata.Reactions)
	}

	props := lo.OmitByKeys(map[string]any(post.GetProps()), internalProps)
	if len(props) == 0 {
		props = nil
	}

	return &domain.NewsPost{
		ID:            post.Id,
		Message:       post.Message,
		CreateAt:      post.CreateAt,
		UpdateAt:      post.UpdateAt,
		ChannelID:     post.ChannelId,
		UserID:        post.UserId,
		FileIDs:       fileIDs,
		Type:          post.Type,
		ReplyCount:    post.ReplyCount,
		IsPinned:      post.IsPinned,
		HasReactions:  post.HasReactions || reactionCount > 0,
		ReactionCount: reactionCount,
		Props:         props,
	}
}
