package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	channelDomain "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/domain"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/modules/feed/format"
	postDomain "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/domain"
	userDomain "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/user/domain"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/config"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

const (
	// FeedSize is the number of posts rendered into the feed
	FeedSize = 50

	feedLanguage   = "en"
	feedCategories = "Mattermost, News, Updates"
	feedTTL        = 60
)

// Posts lists the newest ordinary posts of the news channel
type Posts interface {
	GetNewsPosts(ctx context.Context, limit int) ([]*postDomain.NewsPost, error)
}

// Channels serves news channel metadata, falling back on failure
type Channels interface {
	GetChannelInfo(ctx context.Context) *channelDomain.Channel
}

// Identities serves the bot identity, falling back on failure
type Identities interface {
	GetIdentity(ctx context.Context) *userDomain.User
}

// Service assembles the RSS document of the news channel
type Service struct {
	cfg      *config.Config
	posts    Posts
	channels Channels
	users    Identities
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces the clock used for the copyright year
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a new feed service
func New(cfg *config.Config, posts Posts, channels Channels, users Identities, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		posts:    posts,
		channels: channels,
		users:    users,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FeedURL is the public address of the feed
func (s *Service) FeedURL() string {
	return s.cfg.BaseURL + "/rss"
}

// BuildFeed fetches posts, channel metadata and identity concurrently and
// assembles the RSS channel. Only a post failure fails the feed.
func (s *Service) BuildFeed(ctx context.Context) (*feeds.RssFeed, error) {
	var (
		posts   []*postDomain.NewsPost
		channel *channelDomain.Channel
		user    *userDomain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.posts.GetNewsPosts(gctx, FeedSize)
		return err
	})
	g.Go(func() error {
		channel = s.channels.GetChannelInfo(gctx)
		return nil
	})
	g.Go(func() error {
		user = s.users.GetIdentity(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, oops.
			In("feed").
			With("feed_url", s.FeedURL()).
			Wrapf(fmt.Errorf("%w: %w", errors.ErrFeedGeneration, err), "failed to generate RSS feed")
	}

	return s.assemble(posts, channel, user), nil
}

// GenerateRSS renders the feed as an RSS 2.0 document
func (s *Service) GenerateRSS(ctx context.Context) (string, error) {
	rss, err := s.BuildFeed(ctx)
	if err != nil {
		return "", err
	}

	out, err := feeds.ToXML(rss)
	if err != nil {
		return "", oops.
			In("feed").
			Wrap(fmt.Errorf("%w: %w", errors.ErrFeedGeneration, err))
	}
	return out, nil
}

func (s *Service) assemble(posts []*postDomain.NewsPost, channel *channelDomain.Channel, user *userDomain.User) *feeds.RssFeed {
	title := s.title(channel)

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: s.cfg.MattermostURL},
		Description: description(channel),
		Copyright:   fmt.Sprintf("Copyright %d", s.now().Year()),
		Image: &feeds.Image{
			Url:   s.cfg.MattermostURL + "/api/v4/brand/image",
			Title: title,
			Link:  s.cfg.MattermostURL,
		},
	}
	if len(posts) > 0 {
		feed.Created = time.UnixMilli(posts[0].CreateAt)
	}

	feed.Items = lo.Map(posts, func(p *postDomain.NewsPost, _ int) *feeds.Item {
		return &feeds.Item{
			Title:       format.ExtractTitle(p.Message),
			Link:        &feeds.Link{Href: s.postURL(p.ID)},
			Description: format.FormatDescription(p.Message),
			Id:          p.ID,
			Created:     time.UnixMilli(p.CreateAt),
		}
	})

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Language = feedLanguage
	rss.Category = feedCategories
	rss.Ttl = feedTTL
	rss.ManagingEditor = user.Contact()
	rss.WebMaster = user.Contact()
	for i, item := range rss.Items {
		item.Category = strings.Join(categories(posts[i]), ", ")
	}

	return rss
}

func (s *Service) title(channel *channelDomain.Channel) string {
	name := s.cfg.TeamName
	if name == "" {
		name = channel.DisplayName
	}
	return name + " - News Feed"
}

func (s *Service) postURL(postID string) string {
	return fmt.Sprintf("%s/%s/pl/%s", s.cfg.MattermostURL, s.cfg.TeamName, postID)
}

func description(channel *channelDomain.Channel) string {
	if channel.Purpose != "" {
		return channel.Purpose
	}
	return "Latest posts from " + channel.DisplayName
}

func categories(p *postDomain.NewsPost) []string {
	out := []string{"mattermost", "news"}
	if p.IsPinned {
		out = append(out, "pinned")
	}
	if p.HasReactions {
		out = append(out, "popular")
	}
	if p.ReplyCount > 0 {
		out = append(out, "discussion")
	}
	if tags, ok := p.StringProp("tags"); ok {
		out = append(out, lo.Compact(lo.Map(strings.Split(tags, ","), func(tag string, _ int) string {
			return strings.TrimSpace(tag)
		}))...)
	}
	if category, ok := p.StringProp("category"); ok && category != "" {
		out = append(out, category)
	}
	return lo.Uniq(out)
}
