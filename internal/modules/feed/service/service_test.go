package service

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	channelDomain "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/domain"
	postDomain "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/domain"
	userDomain "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/user/domain"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/config"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePosts struct {
	posts []*postDomain.NewsPost
	err   error
	limit int
}

func (f *fakePosts) GetNewsPosts(_ context.Context, limit int) ([]*postDomain.NewsPost, error) {
	f.limit = limit
	return f.posts, f.err
}

type fakeChannels struct {
	channel *channelDomain.Channel
}

func (f fakeChannels) GetChannelInfo(context.Context) *channelDomain.Channel {
	if f.channel == nil {
		return channelDomain.FallbackChannel()
	}
	return f.channel
}

type fakeIdentities struct {
	user *userDomain.User
}

func (f fakeIdentities) GetIdentity(context.Context) *userDomain.User {
	if f.user == nil {
		return userDomain.FallbackUser()
	}
	return f.user
}

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func testConfig() *config.Config {
	return &config.Config{
		MattermostURL: "https://chat.example.com",
		TeamName:      "acme",
		BaseURL:       "https://feeds.example.com",
	}
}

func newsPosts() []*postDomain.NewsPost {
	return []*postDomain.NewsPost{
		{
			ID:           "p2",
			Message:      "**Release** 2.0 is out\nDetails in `CHANGELOG`",
			CreateAt:     1767225600000,
			FileIDs:      []string{},
			IsPinned:     true,
			HasReactions: true,
			ReplyCount:   2,
			Props:        map[string]any{"tags": "release, product", "category": "engineering"},
		},
		{
			ID:       "p1",
			Message:  "Welcome",
			CreateAt: 1767139200000,
			FileIDs:  []string{},
		},
	}
}

func parse(t *testing.T, xml string) *gofeed.Feed {
	t.Helper()
	feed, err := gofeed.NewParser().ParseString(xml)
	require.NoError(t, err)
	return feed
}

func TestGenerateRSS(t *testing.T) {
	posts := &fakePosts{posts: newsPosts()}
	svc := New(testConfig(), posts,
		fakeChannels{channel: &channelDomain.Channel{ID: "ch1", DisplayName: "Company News", Purpose: "Announcements"}},
		fakeIdentities{user: &userDomain.User{FirstName: "News", LastName: "Bot", Email: "bot@example.com"}},
		WithClock(fixedNow),
	)

	xml, err := svc.GenerateRSS(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FeedSize, posts.limit)

	feed := parse(t, xml)
	assert.Equal(t, "rss", feed.FeedType)
	assert.Equal(t, "acme - News Feed", feed.Title)
	assert.Equal(t, "Announcements", feed.Description)
	assert.Equal(t, "https://chat.example.com", feed.Link)
	assert.Equal(t, "en", feed.Language)
	assert.Equal(t, "Copyright 2026", feed.Copyright)
	require.NotNil(t, feed.Image)
	assert.Equal(t, "https://chat.example.com/api/v4/brand/image", feed.Image.URL)
	assert.Contains(t, xml, "<ttl>60</ttl>")
	assert.Contains(t, xml, "<managingEditor>bot@example.com (News Bot)</managingEditor>")
	assert.Contains(t, xml, "<webMaster>bot@example.com (News Bot)</webMaster>")

	require.Len(t, feed.Items, 2)
	first := feed.Items[0]
	assert.Equal(t, "**Release** 2.0 is out", first.Title)
	assert.Equal(t, "https://chat.example.com/acme/pl/p2", first.Link)
	assert.Equal(t, "p2", first.GUID)
	assert.Contains(t, first.Description, "<strong>Release</strong>")
	assert.Contains(t, first.Description, "<br>")
	assert.Contains(t, first.Description, "<code>CHANGELOG</code>")
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, first.PublishedParsed.Equal(time.UnixMilli(1767225600000)))
	assert.Equal(t, "p1", feed.Items[1].GUID)
}

func TestBuildFeed_Categories(t *testing.T) {
	svc := New(testConfig(), &fakePosts{posts: newsPosts()}, fakeChannels{}, fakeIdentities{}, WithClock(fixedNow))

	rss, err := svc.BuildFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, rss.Items, 2)

	assert.Equal(t, "Mattermost, News, Updates", rss.Category)
	assert.Equal(t, "mattermost, news, pinned, popular, discussion, release, product, engineering", rss.Items[0].Category)
	assert.Equal(t, "mattermost, news", rss.Items[1].Category)
}

func TestBuildFeed_FallbackMetadata(t *testing.T) {
	cfg := testConfig()
	cfg.TeamName = ""
	svc := New(cfg, &fakePosts{posts: newsPosts()}, fakeChannels{}, fakeIdentities{}, WithClock(fixedNow))

	rss, err := svc.BuildFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "News Channel - News Feed", rss.Title)
	assert.Equal(t, "News and updates feed", rss.Description)
	assert.Equal(t, "noreply@mattermost.com (Mattermost API)", rss.ManagingEditor)
}

func TestBuildFeed_DescriptionDefault(t *testing.T) {
	svc := New(testConfig(), &fakePosts{},
		fakeChannels{channel: &channelDomain.Channel{DisplayName: "Town Hall"}},
		fakeIdentities{}, WithClock(fixedNow))

	rss, err := svc.BuildFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Latest posts from Town Hall", rss.Description)
	assert.Empty(t, rss.Items)
	assert.Empty(t, rss.PubDate)
}

func TestBuildFeed_PostFailure(t *testing.T) {
	svc := New(testConfig(), &fakePosts{err: errors.ErrPostFetch}, fakeChannels{}, fakeIdentities{})

	rss, err := svc.BuildFeed(context.Background())
	require.Error(t, err)
	assert.Nil(t, rss)
	assert.True(t, stderrors.Is(err, errors.ErrFeedGeneration))
	assert.True(t, stderrors.Is(err, errors.ErrPostFetch))
}

func TestGenerateRSS_Idempotent(t *testing.T) {
	svc := New(testConfig(), &fakePosts{posts: newsPosts()}, fakeChannels{}, fakeIdentities{}, WithClock(fixedNow))

	first, err := svc.GenerateRSS(context.Background())
	require.NoError(t, err)
	second, err := svc.GenerateRSS(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "<?xml"))
}

func TestFeedURL(t *testing.T) {
	svc := New(testConfig(), &fakePosts{}, fakeChannels{}, fakeIdentities{})
	assert.Equal(t, "https://feeds.example.com/rss", svc.FeedURL())
}
