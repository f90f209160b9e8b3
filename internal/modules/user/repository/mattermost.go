package repository

import (
	"context"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/user/domain"
)

// API is the part of the Mattermost transport the repository needs
type API interface {
	Me(ctx context.Context) (*model.User, error)
}

// MattermostStorage implements Repository on top of the Mattermost REST API
type MattermostStorage struct {
	api API
}

// NewMattermostStorage creates a Mattermost-backed user repository
func NewMattermostStorage(api API) Repository {
	return &MattermostStorage{api: api}
}

func (s *MattermostStorage) GetMe(ctx context.Context) (*domain.User, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		ID:        user.Id,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Roles:     user.Roles,
	}, nil
}
