package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/domain"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/config"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byName     map[string]*domain.Channel
	byID       map[string]*domain.Channel
	nameErr    error
	channelErr error
	nameCalls  int
}

func (f *fakeRepo) GetChannelByName(_ context.Context, teamID, name string) (*domain.Channel, error) {
	f.nameCalls++
	if f.nameErr != nil {
		return nil, f.nameErr
	}
	ch, ok := f.byName[teamID+"/"+name]
	if !ok {
		return nil, stderrors.New("not found")
	}
	return ch, nil
}

func (f *fakeRepo) GetChannel(_ context.Context, channelID string) (*domain.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	ch, ok := f.byID[channelID]
	if !ok {
		return nil, stderrors.New("not found")
	}
	return ch, nil
}

func newsChannel() *domain.Channel {
	return &domain.Channel{ID: "ch1", DisplayName: "Company News", Purpose: "Announcements", Name: "news"}
}

func TestResolveChannelID_ConfiguredID(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(&config.Config{NewsChannelID: "preset", NewsChannelName: "news"}, repo)

	id, err := svc.ResolveChannelID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "preset", id)
	assert.Zero(t, repo.nameCalls, "configured id must not hit the API")
}

func TestResolveChannelID_ByName(t *testing.T) {
	repo := &fakeRepo{byName: map[string]*domain.Channel{"team1/news": newsChannel()}}
	svc := New(&config.Config{TeamID: "team1", NewsChannelName: "news"}, repo)

	id, err := svc.ResolveChannelID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ch1", id)
	assert.Equal(t, 1, repo.nameCalls)
}

func TestResolveChannelID_Failure(t *testing.T) {
	repo := &fakeRepo{nameErr: stderrors.New("connection refused")}
	svc := New(&config.Config{TeamID: "team1", NewsChannelName: "announcements"}, repo)

	_, err := svc.ResolveChannelID(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrChannelResolution))
	assert.Contains(t, err.Error(), "announcements")
	assert.Equal(t, 1, repo.nameCalls, "resolution is never retried")
}

func TestResolveChannelID_EmptyID(t *testing.T) {
	repo := &fakeRepo{byName: map[string]*domain.Channel{"team1/news": {Name: "news"}}}
	svc := New(&config.Config{TeamID: "team1", NewsChannelName: "news"}, repo)

	_, err := svc.ResolveChannelID(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrChannelResolution))
}

func TestGetChannelInfo(t *testing.T) {
	repo := &fakeRepo{
		byName: map[string]*domain.Channel{"team1/news": newsChannel()},
		byID:   map[string]*domain.Channel{"ch1": newsChannel()},
	}
	svc := New(&config.Config{TeamID: "team1", NewsChannelName: "news"}, repo)

	info := svc.GetChannelInfo(context.Background())
	assert.Equal(t, "Company News", info.DisplayName)
	assert.Equal(t, "Announcements", info.Purpose)
}

func TestGetChannelInfo_FallbackOnResolutionFailure(t *testing.T) {
	repo := &fakeRepo{nameErr: stderrors.New("boom")}
	svc := New(&config.Config{TeamID: "team1", NewsChannelName: "news"}, repo)

	info := svc.GetChannelInfo(context.Background())
	assert.Equal(t, domain.FallbackChannel(), info)
}

func TestGetChannelInfo_FallbackOnFetchFailure(t *testing.T) {
	repo := &fakeRepo{channelErr: stderrors.New("boom")}
	svc := New(&config.Config{NewsChannelID: "ch1"}, repo)

	info := svc.GetChannelInfo(context.Background())
	assert.Equal(t, "News Channel", info.DisplayName)
	assert.Equal(t, "News and updates feed", info.Purpose)
}
