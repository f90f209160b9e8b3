package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/repository"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/config"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/errors"
	"github.com/samber/oops"
)

// Service resolves the news channel and serves its metadata
type Service struct {
	cfg  *config.Config
	repo channelRepo.Repository
}

// New creates a new channel service
func New(cfg *config.Config, repo channelRepo.Repository) *Service {
	return &Service{
		cfg:  cfg,
		repo: repo,
	}
}

// ResolveChannelID returns the configured channel id, or looks the configured
// channel name up in the team. Failures are not retried.
func (s *Service) ResolveChannelID(ctx context.Context) (string, error) {
	if s.cfg.NewsChannelID != "" {
		return s.cfg.NewsChannelID, nil
	}

	channel, err := s.repo.GetChannelByName(ctx, s.cfg.TeamID, s.cfg.NewsChannelName)
	if err != nil {
		return "", oops.
			In("channel").
			With("channel_name", s.cfg.NewsChannelName, "team_id", s.cfg.TeamID).
			Wrapf(fmt.Errorf("%w: %w", errors.ErrChannelResolution, err), "failed to find news channel: %s", s.cfg.NewsChannelName)
	}
	if channel.ID == "" {
		return "", oops.
			In("channel").
			With("channel_name", s.cfg.NewsChannelName).
			Wrapf(errors.ErrChannelResolution, "failed to find news channel: %s", s.cfg.NewsChannelName)
	}

	return channel.ID, nil
}

// GetChannelInfo returns the news channel metadata. Any failure is logged and
// answered with the fallback channel so the feed stays available.
func (s *Service) GetChannelInfo(ctx context.Context) *domain.Channel {
	channelID, err := s.ResolveChannelID(ctx)
	if err != nil {
		slog.Warn("Using fallback channel info", "error", fmt.Errorf("%w: %w", errors.ErrMetadataFetch, err))
		return domain.FallbackChannel()
	}

	channel, err := s.repo.GetChannel(ctx, channelID)
	if err != nil {
		slog.Warn("Using fallback channel info", "channel_id", channelID, "error", fmt.Errorf("%w: %w", errors.ErrMetadataFetch, err))
		return domain.FallbackChannel()
	}

	return channel
}
