package repository

import (
	"context"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/domain"
)

// API is the part of the Mattermost transport the repository needs
type API interface {
	ChannelByName(ctx context.Context, teamID, name string) (*model.Channel, error)
	Channel(ctx context.Context, channelID string) (*model.Channel, error)
}

// MattermostStorage implements Repository on top of the Mattermost REST API
type MattermostStorage struct {
	api API
}

// NewMattermostStorage creates a Mattermost-backed channel repository
func NewMattermostStorage(api API) Repository {
	return &MattermostStorage{api: api}
}

func (s *MattermostStorage) GetChannelByName(ctx context.Context, teamID, name string) (*domain.Channel, error) {
	channel, err := s.api.ChannelByName(ctx, teamID, name)
	if err != nil {
		return nil, err
	}
	return toDomain(channel), nil
}

func (s *MattermostStorage) GetChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	channel, err := s.api.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return toDomain(channel), nil
}

func toDomain(channel *model.Channel) *domain.Channel {
	return &domain.Channel{
		ID:          channel.Id,
		DisplayName: channel.DisplayName,
		Purpose:     channel.Purpose,
		Header:      channel.Header,
		Name:        channel.Name,
	}
}
