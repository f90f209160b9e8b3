package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/user/domain"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/user/repository"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/errors"
)

// Service handles the bot identity
type Service struct {
	repo repository.Repository
}

// New creates a new user service
func New(repo repository.Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// GetIdentity returns the user the bot token belongs to, or the fallback
// identity when it cannot be fetched
func (s *Service) GetIdentity(ctx context.Context) *domain.User {
	user, err := s.repo.GetMe(ctx)
	if err != nil {
		slog.Warn("Using fallback identity", "error", fmt.Errorf("%w: %w", errors.ErrMetadataFetch, err))
		return domain.FallbackUser()
	}
	return user
}
